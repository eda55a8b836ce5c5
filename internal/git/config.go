package git

// ComparisonConfig selects what a changeset is computed against. It is
// supplied per call and never modified.
type ComparisonConfig struct {
	Reference Reference
	// OriginRefsOnly restricts branch listings to remote-tracking branches.
	OriginRefsOnly bool
	// PinToMergeHead compares against the literal target tip. When false the
	// merge-base of HEAD and the target is used if one exists.
	PinToMergeHead bool
}
