package postgres

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dulanjanabandara/job-recommender-system/internal/infrastructure/database/postgres/models"
	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestApplyQuery(t *testing.T) {
	db := dryRunDB(t)

	values, err := url.ParseQuery("status=pending&status=interview&jobType[ne]=remote&company=Acme&sort=-company&fields=company,position&page=2&limit=10&secret=x")
	require.NoError(t, err)

	schema := query.Schema{"status": query.String, "jobType": query.String, "company": query.String, "position": query.String}
	q, err := query.Parse(values, schema)
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var out []models.JobModel
		return applyQuery(tx.Model(&models.JobModel{}), q, jobColumns).Find(&out)
	})

	assert.Contains(t, sql, `SELECT "id","company","position" FROM "jobs"`)
	assert.Contains(t, sql, `"job_type" <> 'remote'`)
	assert.Contains(t, sql, `"company" = 'Acme'`)
	assert.Contains(t, sql, `"status" IN ('pending','interview')`)
	assert.Contains(t, sql, `ORDER BY "company" DESC`)
	assert.Contains(t, sql, "LIMIT 10 OFFSET 10")
	assert.NotContains(t, sql, "secret")
}

func TestColumnMapPatch(t *testing.T) {
	patch := jobColumns.patch(map[string]any{"jobType": "remote", "status": "declined", "id": "nope"})

	assert.Equal(t, map[string]any{"job_type": "remote", "status": "declined"}, patch)
}
