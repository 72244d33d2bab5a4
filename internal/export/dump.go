package export

import (
	"bufio"
	"fmt"
	"io"

	"zexport/internal/zendesk"
)

// WriteRawDump writes one serialized record per line, exactly as received
// from the API.
func WriteRawDump(w io.Writer, tickets []zendesk.Ticket) error {
	bw := bufio.NewWriter(w)
	for i := range tickets {
		if _, err := bw.Write(tickets[i].Raw); err != nil {
			return fmt.Errorf("write raw dump: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write raw dump: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write raw dump: %w", err)
	}
	return nil
}
