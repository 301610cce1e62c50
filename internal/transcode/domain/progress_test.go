package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAndOpenEnvelope(t *testing.T) {
	ev := ProgressEvent{
		SocketID:     "sock-1",
		Percent:      100,
		Status:       StatusFinished,
		PresignedURL: "http://minio/videos/out.mp4?sig=abc",
		Key:          "out.mp4",
	}

	data, err := WrapEvent(ev)
	assert.NoError(t, err)

	// 外層是 {"Message":"<內層 JSON 字串>"}
	var envelope map[string]string
	assert.NoError(t, json.Unmarshal(data, &envelope))
	assert.Contains(t, envelope, "Message")

	got, inner, err := OpenEnvelope(data)
	assert.NoError(t, err)
	assert.Equal(t, ev, got)

	// inner 是可直接轉送給 client 的事件 JSON
	var fromInner ProgressEvent
	assert.NoError(t, json.Unmarshal(inner, &fromInner))
	assert.Equal(t, ev, fromInner)
}

func TestOpenEnvelopeMalformed(t *testing.T) {
	_, _, err := OpenEnvelope([]byte("not json"))
	assert.Error(t, err)

	// 外層合法但內層不是事件 JSON
	_, _, err = OpenEnvelope([]byte(`{"Message":"not json"}`))
	assert.Error(t, err)
}

func TestPendingEventOmitsFinishedFields(t *testing.T) {
	data, err := WrapEvent(ProgressEvent{SocketID: "sock-1", Percent: 42.5, Status: StatusPending})
	assert.NoError(t, err)

	_, inner, err := OpenEnvelope(data)
	assert.NoError(t, err)
	assert.NotContains(t, string(inner), "presignedUrl")
	assert.NotContains(t, string(inner), "key")
}
