package loadbalancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobin_Rotates(t *testing.T) {
	rr := NewRoundRobin([]string{"http://a:8082", "http://b:8082"})

	assert.Equal(t, "http://a:8082", rr.Next())
	assert.Equal(t, "http://b:8082", rr.Next())
	assert.Equal(t, "http://a:8082", rr.Next())
}

func TestRoundRobin_Empty(t *testing.T) {
	rr := NewRoundRobin(nil)
	assert.Equal(t, "", rr.Next())
	assert.Empty(t, rr.Servers())
}
