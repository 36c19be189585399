package export

import (
	"fmt"
	"io"
	"os"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

// Reporter writes formatted reviews to the console.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (r *Reporter) Handle(review domain.FormattedReview) error {
	_, err := fmt.Fprintln(r.writer, review.Markdown)
	if err != nil {
		return fmt.Errorf("failed to write review: %w", err)
	}
	return nil
}
