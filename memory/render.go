package memory

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/internal/util"
)

// NoHistorySentinel is the digest returned for a key without stored turns.
// Downstream prompts rely on working memory never being the empty string.
const NoHistorySentinel = "No conversation history yet."

// timeLayout renders the turn timestamp as local wall-clock time; the full
// date would only add noise to a short-term digest.
const timeLayout = "15:04:05"

func renderTurns(turns []core.Turn, truncateAt int) string {
	if len(turns) == 0 {
		return NoHistorySentinel
	}
	lines := lo.Map(turns, func(turn core.Turn, _ int) string {
		return renderTurn(turn, truncateAt)
	})
	return strings.Join(lines, "\n")
}

func renderTurn(turn core.Turn, truncateAt int) string {
	stamp := turn.CreatedAt.Local().Format(timeLayout)
	return fmt.Sprintf("[%s] %s: %s", stamp, turn.Role, util.Truncate(turn.Content, truncateAt))
}
