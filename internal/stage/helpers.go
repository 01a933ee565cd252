package stage

import (
	"fmt"
	"os"
	"strings"

	"dubstudio/internal/services"
)

// RequireArtifact verifies that an upstream stage produced the named file.
// On failure it returns a services.ErrValidation suitable for Prepare methods.
func RequireArtifact(stageName, label, path string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+label,
			fmt.Sprintf("%s is missing; an earlier stage did not record it", label), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+label,
			fmt.Sprintf("%s %q is not readable", label, path), err)
	}
	if info.IsDir() {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+label,
			fmt.Sprintf("%s %q is a directory, expected a file", label, path), nil)
	}
	return nil
}

// RequireText verifies that an upstream stage produced non-empty text output.
func RequireText(stageName, label, value string) error {
	if strings.TrimSpace(value) == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+label,
			fmt.Sprintf("%s is empty; an earlier stage did not record it", label), nil)
	}
	return nil
}
