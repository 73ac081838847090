package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	j := &Job{Company: "Acme", Position: "Engineer"}
	j.ApplyDefaults()

	assert.Equal(t, StatusPending, j.Status)
	assert.Equal(t, TypeFullTime, j.Type)
	assert.Equal(t, DefaultLocation, j.Location)

	j = &Job{Status: StatusInterview, Type: TypeRemote, Location: "Colombo"}
	j.ApplyDefaults()

	assert.Equal(t, StatusInterview, j.Status)
	assert.Equal(t, TypeRemote, j.Type)
	assert.Equal(t, "Colombo", j.Location)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, StatusDeclined.IsValid())
	assert.False(t, Status("hired").IsValid())
	assert.True(t, TypeInternship.IsValid())
	assert.False(t, Type("contract").IsValid())
}
