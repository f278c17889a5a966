package enums

// ActionKind identifies a metered user action tracked by the quota ledger.
type ActionKind string

const (
	ActionLike      ActionKind = "like"
	ActionSuperLike ActionKind = "super_like"
	ActionBoost     ActionKind = "boost"
)

func (k ActionKind) String() string {
	return string(k)
}
