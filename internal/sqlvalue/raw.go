package sqlvalue

// Raw is SQL text spliced verbatim in place of a converted value, e.g. to
// assign one column from another in an UPDATE:
//
//	updater.Set("Last_Seen", sqlvalue.Raw("`Created`"))
//
// Never build a Raw from untrusted input.
type Raw string

// Date layouts used when serializing time.Time values.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05.000"
	TimeLayout     = "15:04:05.000"
)

// parseLayouts are tried in order when a driver hands back a temporal value as text.
var parseLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	DateLayout,
}
