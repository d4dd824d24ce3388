package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere(t *testing.T) {
	var w where
	assert.Equal(t, "", w.sql())

	w.add("j.is_active = true")
	w.add("j.salary_max >= ?", 3000)
	w.add("(j.title ILIKE ? OR j.description ILIKE ?)", "%go%", "%go%")
	ph := w.arg(10)

	assert.Equal(t, " WHERE j.is_active = true AND j.salary_max >= $1 AND (j.title ILIKE $2 OR j.description ILIKE $3)", w.sql())
	assert.Equal(t, "$4", ph)
	assert.Equal(t, []any{3000, "%go%", "%go%", 10}, w.args)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%50\\%\\_off%", likePattern(" 50%_off "))
}

func TestPageNormalized(t *testing.T) {
	assert.Equal(t, Page{Limit: 20}, Page{}.normalized(100))
	assert.Equal(t, Page{Limit: 100, Offset: 0}, Page{Limit: 500, Offset: -3}.normalized(100))
}
