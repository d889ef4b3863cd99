package enums

// ToggleResult reports what a membership toggle did.
type ToggleResult string

const (
	ToggleAdded   ToggleResult = "added"
	ToggleRemoved ToggleResult = "removed"
)

// String implements fmt.Stringer.
func (t ToggleResult) String() string {
	return string(t)
}
