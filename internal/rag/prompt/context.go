package prompt

import (
	"fmt"
	"strings"

	"github.com/adukkipati/pdfrag/internal/domain/ragmodel"
)

// BuildContext assembles the grounding context for generation from ranked
// retrieval results, greedily including chunks in order until the next one
// would push past charLimit. The returned citations are exactly the chunks
// that made it into the string, so attribution never claims a source the
// model did not see.
func BuildContext(results []ragmodel.RetrievedChunk, charLimit int) (string, []ragmodel.Citation) {
	var b strings.Builder
	var citations []ragmodel.Citation

	for i, r := range results {
		entry := fmt.Sprintf("[Source %d - Doc: %s, Page: %d]\n%s\n\n", len(citations)+1, r.Filename, r.Page, r.Text)
		if b.Len()+len(entry) > charLimit {
			if i == 0 {
				// even the best chunk does not fit, the context stays empty
				return "", nil
			}
			break
		}
		b.WriteString(entry)
		citations = append(citations, ragmodel.Citation{
			Filename: r.Filename,
			Page:     r.Page,
			Score:    r.Score,
		})
	}

	return b.String(), citations
}
