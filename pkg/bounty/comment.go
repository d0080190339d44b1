package bounty

import (
	"fmt"
	"strings"
)

// markerPrefix opens the invisible HTML comment that identifies a
// BountyHub status comment. The bounty ID follows so each bounty owns
// exactly one comment on its issue.
const markerPrefix = "<!-- bountyhub:"

// Marker returns the hidden marker for b's status comment.
func Marker(bountyID string) string {
	return markerPrefix + bountyID + " -->"
}

// ParseMarker extracts the bounty ID from a comment body containing a
// BountyHub marker. Returns false when the body carries no marker.
func ParseMarker(body string) (string, bool) {
	_, rest, found := strings.Cut(body, markerPrefix)
	if !found {
		return "", false
	}
	id, _, found := strings.Cut(rest, " -->")
	if !found || id == "" {
		return "", false
	}
	return id, true
}

// RenderComment produces the markdown body of the status comment for b.
// The body always starts with the bounty's marker so the GitHub
// integration can find and update it in place. Output is deterministic
// for a given bounty so repeated syncs don't cause no-op edits to look
// like changes.
func RenderComment(b *Bounty) string {
	var sb strings.Builder
	sb.WriteString(Marker(b.ID))
	sb.WriteString("\n")

	switch b.Status {
	case StatusOpen:
		fmt.Fprintf(&sb, "## 💎 %s bounty\n\n", b.Amount())
		fmt.Fprintf(&sb, "@%s has placed a **%s** bounty on this issue.\n\n", b.Funder, b.Amount())
		sb.WriteString("To claim it, open a pull request that resolves this issue ")
		sb.WriteString("and reference the issue number in the PR description ")
		sb.WriteString("(e.g. `Fixes #")
		fmt.Fprintf(&sb, "%d", b.IssueNumber)
		sb.WriteString("`). The bounty is awarded when the pull request is merged.\n")

	case StatusMerged:
		fmt.Fprintf(&sb, "## 🎉 %s bounty — pending payout\n\n", b.Amount())
		if b.Claimant != "" && b.PRNumber > 0 {
			fmt.Fprintf(&sb, "Pull request #%d by @%s resolving this issue was merged.\n", b.PRNumber, b.Claimant)
		} else {
			sb.WriteString("A pull request resolving this issue was merged.\n")
		}
		fmt.Fprintf(&sb, "The **%s** bounty from @%s is now pending payout.\n", b.Amount(), b.Funder)

	case StatusPaid:
		fmt.Fprintf(&sb, "## ✅ %s bounty — paid\n\n", b.Amount())
		if b.Claimant != "" {
			fmt.Fprintf(&sb, "The **%s** bounty was paid to @%s. Thanks for contributing!\n", b.Amount(), b.Claimant)
		} else {
			fmt.Fprintf(&sb, "The **%s** bounty was paid out. Thanks for contributing!\n", b.Amount())
		}

	case StatusCancelled:
		fmt.Fprintf(&sb, "## 🚫 Bounty cancelled\n\n")
		fmt.Fprintf(&sb, "The **%s** bounty @%s placed on this issue has been withdrawn.\n", b.Amount(), b.Funder)
	}

	return sb.String()
}
