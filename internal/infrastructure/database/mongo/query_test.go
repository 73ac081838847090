package mongo

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

func TestBuildFilter(t *testing.T) {
	schema := query.Schema{"status": query.String, "salary": query.Int}
	values, err := url.ParseQuery("status=pending&status=interview&salary[gte]=10&salary[lt]=20")
	require.NoError(t, err)

	q, err := query.Parse(values, schema)
	require.NoError(t, err)

	filter := buildFilter(activeUsers, q)

	assert.Equal(t, bson.M{
		"active": bson.M{"$ne": false},
		"status": bson.M{"$in": []any{"pending", "interview"}},
		"salary": bson.M{"$gte": int64(10), "$lt": int64(20)},
	}, filter)
	assert.Len(t, activeUsers, 1, "base filter must not be mutated")
}

func TestBuildProjection(t *testing.T) {
	assert.Nil(t, buildProjection(nil, nil))
	assert.Equal(t, bson.D{{Key: "password", Value: 0}}, buildProjection(nil, []string{"password"}))
	assert.Equal(t, bson.D{{Key: "company", Value: 1}}, buildProjection([]string{"company"}, []string{"password"}))
}

func TestVisibleAddsActivePredicate(t *testing.T) {
	filter := visible(bson.M{"email": "ada@example.com"})

	assert.Equal(t, bson.M{
		"email":  "ada@example.com",
		"active": bson.M{"$ne": false},
	}, filter)
}

func TestUserDocumentRoundTripDefaultsActive(t *testing.T) {
	u := toUserEntity(&userDocument{ID: bson.NewObjectID(), Email: "ada@example.com"})
	assert.True(t, u.Active, "documents without an active field are active")

	inactive := false
	u = toUserEntity(&userDocument{ID: bson.NewObjectID(), Active: &inactive})
	assert.False(t, u.Active)
}
