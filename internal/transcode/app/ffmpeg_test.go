package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildArgsMinimal(t *testing.T) {
	args := buildArgs(EncodeSpec{
		InputPath:  "/tmp/in.mp4",
		OutputPath: "/tmp/out.mp4",
	})
	assert.Equal(t, []string{
		"-y", "-i", "/tmp/in.mp4",
		"-progress", "pipe:1", "-nostats",
		"/tmp/out.mp4",
	}, args)
}

func TestBuildArgsWithCodecAndFilters(t *testing.T) {
	args := buildArgs(EncodeSpec{
		InputPath:  "/tmp/in.mp4",
		OutputPath: "/tmp/out.webm",
		Codec:      "libvpx-vp9",
		VideoFilters: []string{
			"unsharp=luma_msize_x=7:luma_msize_y=7:luma_amount=2.5",
			"scale=1280:720",
		},
	})
	// filters 依列出順序以逗號合併為單一 -vf
	assert.Equal(t, []string{
		"-y", "-i", "/tmp/in.mp4",
		"-c:v", "libvpx-vp9",
		"-vf", "unsharp=luma_msize_x=7:luma_msize_y=7:luma_amount=2.5,scale=1280:720",
		"-progress", "pipe:1", "-nostats",
		"/tmp/out.webm",
	}, args)
}

func TestParseProgressLine(t *testing.T) {
	// out_time_ms 單位是微秒：5 秒 / 10 秒 = 50%
	percent, ok := parseProgressLine("out_time_ms=5000000", 10)
	assert.True(t, ok)
	assert.InDelta(t, 50.0, percent, 0.001)

	// 超過長度封頂 100
	percent, ok = parseProgressLine("out_time_ms=20000000", 10)
	assert.True(t, ok)
	assert.Equal(t, 100.0, percent)

	// 其他 key 與壞值都略過
	_, ok = parseProgressLine("frame=42", 10)
	assert.False(t, ok)
	_, ok = parseProgressLine("out_time_ms=N/A", 10)
	assert.False(t, ok)
	_, ok = parseProgressLine("out_time_ms=-1", 10)
	assert.False(t, ok)
}
