package helpers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldErrors(t *testing.T) {
	t.Parallel()

	e1, e2 := errors.New("one"), errors.New("two")
	assert.NoError(t, FoldErrors(nil))
	assert.Equal(t, e1, FoldErrors([]error{e1}))
	assert.Equal(t, "one\ntwo", FoldErrors([]error{e1, e2}).Error())
}

func TestIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5*time.Second, IntSecondDefault(0, 5*time.Second))
	assert.Equal(t, 2*time.Second, IntSecondDefault(2, 5*time.Second))
	assert.Equal(t, time.Second, IntMillisecondDefault(0, time.Second))
	assert.Equal(t, 250*time.Millisecond, IntMillisecondDefault(250, time.Second))
	assert.Equal(t, time.Duration(0), IntMillisecondDefault(-1, time.Second))
}

func TestMockHTTP(t *testing.T) {
	t.Parallel()

	m := &MockHTTP{
		Routes: map[string]string{"GET /a": "route"},
		Body:   []byte("default"),
	}
	c := m.Client()
	get := func(method, url, body string) string {
		req, err := http.NewRequest(method, url, strings.NewReader(body))
		require.NoError(t, err)
		resp, err := c.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "route", get("GET", "http://h/a", ""))
	assert.Equal(t, "default", get("POST", "http://h/a", "payload"))

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "http://h/a", reqs[0].URL)
	assert.Equal(t, "POST", reqs[1].Method)
	assert.Equal(t, "payload", string(reqs[1].Body))

	m.Err = errors.New("down")
	_, err := c.Get("http://h/a")
	assert.Error(t, err)
}
