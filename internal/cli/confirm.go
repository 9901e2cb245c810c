package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question and waits for the user's answer. An empty
// answer counts as no.
func Confirm(ctx context.Context, reader *NonBlockingReader, writer io.Writer, question string) (bool, error) {
	if _, err := fmt.Fprint(writer, FormatPrompt(question+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
