package challenge

// Negotiable is a challenge field that either side may propose and only the
// other side may accept. Admins bypass the handshake with Set.
type Negotiable[T comparable] struct {
	Value       T
	IsSet       bool
	Suggested   T
	HasProposal bool
	SuggestedBy string
}

// Suggest records a proposal, replacing whatever was pending.
func (n *Negotiable[T]) Suggest(teamID string, value T) {
	n.Suggested = value
	n.HasProposal = true
	n.SuggestedBy = teamID
}

// CanConfirm reports whether teamID may accept the pending proposal.
func (n Negotiable[T]) CanConfirm(teamID string) bool {
	return n.HasProposal && teamID != "" && teamID != n.SuggestedBy
}

// Confirm commits the pending proposal. The caller checks CanConfirm first.
func (n *Negotiable[T]) Confirm() T {
	n.Value = n.Suggested
	n.IsSet = true
	n.Clear()
	return n.Value
}

func (n *Negotiable[T]) Clear() {
	var zero T
	n.Suggested = zero
	n.HasProposal = false
	n.SuggestedBy = ""
}

// Set commits value directly and drops any pending proposal.
func (n *Negotiable[T]) Set(value T) {
	n.Value = value
	n.IsSet = true
	n.Clear()
}

// Unset forgets the committed value.
func (n *Negotiable[T]) Unset() {
	var zero T
	n.Value = zero
	n.IsSet = false
}
