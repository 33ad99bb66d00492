package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowserSession_CloseIsIdempotent(t *testing.T) {
	session := &BrowserSession{}

	// 重复Close不应崩溃, 第一次之后直接返回
	assert.NotPanics(t, func() {
		session.Close()
		session.Close()
	})
	assert.True(t, session.closed)

	// nil接收者也安全
	var nilSession *BrowserSession
	assert.NotPanics(t, func() { nilSession.Close() })
}
