package cmd

import (
	"encoding/json"
	"io"

	"github.com/thiagokokada/gitscope/internal/git"
)

type referenceJSON struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	SHA     string `json:"sha"`
	Message string `json:"message,omitempty"`
	Pinned  bool   `json:"pinned,omitempty"`
}

func newReferenceJSON(ref git.Reference) *referenceJSON {
	if ref == nil {
		return nil
	}
	return &referenceJSON{
		Kind:    ref.Kind().String(),
		Name:    ref.FriendlyName(),
		SHA:     ref.Target().SHA(),
		Message: ref.Target().ShortMessage(),
		Pinned:  ref.PinToMergeHead(),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
