package application

import (
	"time"

	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)

func mockAnyContext() interface{} {
	return mock.Anything
}
