package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/reposage/internal/types"
)

func TestNPlusOneDetector(t *testing.T) {
	d := NewNPlusOneDetector()

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"loop with two query kinds", "for u in users:\n  cur.execute(q)\n  rows = cur.fetchall()", true},
		{"foreach with select and find", "users.forEach(u => db.find(u)); SELECT * FROM x", true},
		{"loop with one query kind", "for u in users:\n  cur.execute(q)\n  cur.execute(q2)", false},
		{"queries without loop", "db.query(a); db.find(b)", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := d.Detect("repo.py", tt.content)
			if !tt.want {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, types.SeverityMedium, findings[0].Severity)
			assert.Equal(t, types.CategoryPerformance, findings[0].Category)
			assert.Equal(t, "High database latency under load", findings[0].LikelySymptoms)
			assert.Equal(t, []string{"repo.py"}, findings[0].Files)
		})
	}
}

func TestPaginationDetector(t *testing.T) {
	d := NewPaginationDetector()

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"list with select", "def list_users(): return db.execute('SELECT * FROM users')", true},
		{"get with find", "app.get('/users', () => User.find({}))", true},
		{"limit present", "def list_users(): db.execute('SELECT * FROM users LIMIT 10')", false},
		{"cursor present", "def get_all(cursor): db.find(cursor)", false},
		{"no query", "def list_users(): return []", false},
		{"no get or list", "SELECT 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := d.Detect("api.py", tt.content)
			if tt.want {
				require.Len(t, findings, 1)
				assert.Equal(t, "API endpoint without pagination", findings[0].Issue)
				assert.Equal(t, types.SeverityMedium, findings[0].Severity)
			} else {
				assert.Empty(t, findings)
			}
		})
	}
}

func TestSyncIODetector_AtMostOnePerFile(t *testing.T) {
	d := NewSyncIODetector()

	content := "time.sleep(1)\nf = open('x')\nf.read()\nf.write(b)\nrequests.get(u)\nrequests.post(u)"
	findings := d.Detect("worker.py", content)
	require.Len(t, findings, 1)
	assert.Equal(t, types.SeverityLow, findings[0].Severity)
	assert.Equal(t, "Potential blocking synchronous I/O operation", findings[0].Issue)

	assert.Len(t, d.Detect("worker.go", "time.Sleep(time.Second)"), 1)
	assert.Empty(t, d.Detect("pure.py", "x = 1 + 2"))
}
