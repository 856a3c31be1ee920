package reportstorage

import (
	"fmt"
	"strings"

	"coordination-api/utils"
)

const pointerScheme = "sha256:"

// ComputePointer derives the content address of a report document.
func ComputePointer(report []byte) string {
	return pointerScheme + utils.GenerateSHA256HashBytes(report)
}

// parsePointer extracts the hex digest from a pointer. Pointers issued by
// other systems (e.g. ipfs://) are not resolvable here.
func parsePointer(pointer string) (string, error) {
	if !strings.HasPrefix(pointer, pointerScheme) {
		return "", fmt.Errorf("unresolvable report pointer %q", pointer)
	}
	digest := strings.TrimPrefix(pointer, pointerScheme)
	if len(digest) != 64 {
		return "", fmt.Errorf("malformed report pointer %q", pointer)
	}
	return digest, nil
}
