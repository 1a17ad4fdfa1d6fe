package types

import (
	"strings"
	"time"

	"github.com/tessella/opsq/errors"
)

// TimeWindow enumerates the relative time windows the compiler can lower.
type TimeWindow string

const (
	WindowLastMonth TimeWindow = "last_month"
	WindowThisMonth TimeWindow = "this_month"
	WindowLastYear  TimeWindow = "last_year"
	WindowThisYear  TimeWindow = "this_year"
	WindowLast7Days TimeWindow = "last_7_days"
)

// TimeValueKind tags the three lowering families for time-valued fields.
type TimeValueKind string

const (
	TimeAbsolute TimeValueKind = "absolute" // single date, equality predicate
	TimeRange    TimeValueKind = "range"    // BETWEEN predicate
	TimeRelative TimeValueKind = "relative" // truncate+interval predicate
)

// TimeValue is the normalized form of an extracted time expression. It is
// carried through the flat field map as a string (see Encode/ParseTimeValue)
// so prior-turn context stays a plain map of strings.
type TimeValue struct {
	Kind   TimeValueKind
	Window TimeWindow // set when Kind == TimeRelative
	Date   string     // set when Kind == TimeAbsolute, layout 2006-01-02
	Start  string     // set when Kind == TimeRange
	End    string     // set when Kind == TimeRange
}

// Encode renders the time value into its field-map string form.
func (tv *TimeValue) Encode() string {
	switch tv.Kind {
	case TimeAbsolute:
		return "date:" + tv.Date
	case TimeRange:
		return "range:" + tv.Start + ".." + tv.End
	default:
		return string(tv.Window)
	}
}

// ParseTimeValue decodes a field-map time string back into a TimeValue.
func ParseTimeValue(s string) (*TimeValue, error) {
	switch {
	case strings.HasPrefix(s, "date:"):
		date := strings.TrimPrefix(s, "date:")
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "bad time value %q", s)
		}
		return &TimeValue{Kind: TimeAbsolute, Date: date}, nil
	case strings.HasPrefix(s, "range:"):
		bounds := strings.SplitN(strings.TrimPrefix(s, "range:"), "..", 2)
		if len(bounds) != 2 {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "bad time range %q", s)
		}
		for _, b := range bounds {
			if _, err := time.Parse("2006-01-02", b); err != nil {
				return nil, errors.Wrapf(errors.ErrInvalidRequest, "bad time range bound %q", b)
			}
		}
		return &TimeValue{Kind: TimeRange, Start: bounds[0], End: bounds[1]}, nil
	}

	switch TimeWindow(s) {
	case WindowLastMonth, WindowThisMonth, WindowLastYear, WindowThisYear, WindowLast7Days:
		return &TimeValue{Kind: TimeRelative, Window: TimeWindow(s)}, nil
	}
	return nil, errors.Wrapf(errors.ErrInvalidRequest, "unrecognized time value %q", s)
}

// PredicateShape tags how a predicate is rendered into SQL.
type PredicateShape string

const (
	ShapeEquality PredicateShape = "equality" // column = ?
	ShapeLike     PredicateShape = "like"     // column LIKE ?
	ShapeBetween  PredicateShape = "between"  // column BETWEEN ? AND ?
	ShapeWindow   PredicateShape = "window"   // relative date window
	ShapeRaw      PredicateShape = "raw"      // template-declared literal predicate
)

// Predicate is one WHERE condition of a compiled query.
type Predicate struct {
	Column string         `json:"column,omitempty"`
	Shape  PredicateShape `json:"shape"`
	Args   []string       `json:"args,omitempty"`
	Window TimeWindow     `json:"window,omitempty"` // Shape == ShapeWindow
	Raw    string         `json:"raw,omitempty"`    // Shape == ShapeRaw
}

// TableRef names a table by canonical name and physical locator. The
// renderer emits `locator AS name` so output columns keep canonical prefixes.
type TableRef struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
}

// CompiledJoin is one join edge of a compiled query, in template declaration
// order.
type CompiledJoin struct {
	Table TableRef `json:"table"`
	Left  string   `json:"left"` // canonical name of the joined-from table
	On    string   `json:"on"`   // shared join column
}

// CompiledQuery is the backend-agnostic result of compilation. It may only
// reference columns reachable from its primary table via declared joins.
type CompiledQuery struct {
	Intent  Intent         `json:"intent"`
	Select  []string       `json:"select"`
	From    TableRef       `json:"from"`
	Joins   []CompiledJoin `json:"joins,omitempty"`
	Where   []Predicate    `json:"where,omitempty"`
	GroupBy []string       `json:"group_by,omitempty"`
	OrderBy *OrderBy       `json:"order_by,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}
