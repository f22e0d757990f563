package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Offset(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Size: 10}.Offset())
	assert.Equal(t, 20, PageRequest{Page: 3, Size: 10}.Offset())
	assert.Equal(t, 0, PageRequest{Page: 0, Size: 10}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt, Size: 2}.Offset())
	assert.Equal(t, math.MaxInt, PageRequest{Page: math.MaxInt/4 + 2, Size: 4}.Offset())
}

func TestPageRequest_TotalPages(t *testing.T) {
	assert.Equal(t, 0, PageRequest{Page: 1, Size: 10}.TotalPages(0))
	assert.Equal(t, 1, PageRequest{Page: 1, Size: 10}.TotalPages(10))
	assert.Equal(t, 2, PageRequest{Page: 1, Size: 10}.TotalPages(11))
	assert.Equal(t, 1, PageRequest{Page: 1, Size: math.MaxInt}.TotalPages(18))
	assert.Equal(t, 0, PageRequest{Page: 1, Size: 0}.TotalPages(5))
}
