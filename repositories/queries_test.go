package repositories

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The read queries are assembled as `SELECT` + columns + `FROM ...`, so the
// column consts must carry whitespace on both ends or the keywords fuse into
// a single identifier that Postgres rejects.
var selectBoundary = regexp.MustCompile(`(?s)^SELECT\s.*\S\s+FROM\s`)

func TestSelectColumnConstsJoinCleanly(t *testing.T) {
	queries := map[string]string{
		"match by id":           `SELECT` + matchColumns + `FROM matches WHERE id = $1`,
		"matches by tournament": `SELECT` + matchColumns + `FROM matches WHERE tournament_id = $1`,
		"tournament by id":      `SELECT` + tournamentColumns + `FROM tournaments WHERE id = $1`,
		"tournament list":       `SELECT` + tournamentColumns + `FROM tournaments`,
		"tournaments due":       `SELECT` + tournamentColumns + `FROM tournaments WHERE status = $1 AND start_at <= $2`,
	}

	for name, query := range queries {
		t.Run(name, func(t *testing.T) {
			assert.Regexp(t, selectBoundary, query)
			assert.NotContains(t, query, "created_atFROM")
		})
	}
}

func TestColumnConstsMatchScanArity(t *testing.T) {
	require.Len(t, strings.Split(matchColumns, ","), 15)
	require.Len(t, strings.Split(tournamentColumns, ","), 11)
}
