package calc

// DayType is the accounting category of a calendar day.
type DayType string

const (
	WorkDay  DayType = "work_day"
	SickDay  DayType = "sick_day"
	Vacation DayType = "vacation"
	DayOff   DayType = "day_off"
)

// DayTypes lists every accepted day type in display order.
var DayTypes = []DayType{WorkDay, SickDay, Vacation, DayOff}

var dayTypeLabels = map[DayType]string{
	WorkDay:  "Work day",
	SickDay:  "Sick day",
	Vacation: "Vacation",
	DayOff:   "Day off",
}

// Valid reports whether t is one of the four known day types.
func (t DayType) Valid() bool {
	_, ok := dayTypeLabels[t]
	return ok
}

// Label returns a human-readable name, or the raw value for unknown types.
func (t DayType) Label() string {
	if l, ok := dayTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseDayType maps an exact, case-sensitive label to a DayType.
func ParseDayType(s string) (DayType, error) {
	if err := ValidateDayType(s); err != nil {
		return "", err
	}
	return DayType(s), nil
}
