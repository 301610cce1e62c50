package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessOptionsValidate(t *testing.T) {
	// format 必填
	opts := ProcessOptions{}
	assert.Error(t, opts.Validate(), "empty format should fail")

	opts = ProcessOptions{Format: "mp4"}
	assert.NoError(t, opts.Validate())

	// 解析度必須是 WxH 正整數
	opts = ProcessOptions{Format: "mp4", Resolution: "1280x720"}
	assert.NoError(t, opts.Validate())

	opts = ProcessOptions{Format: "mp4", Resolution: "1280"}
	assert.Error(t, opts.Validate(), "resolution without height should fail")

	opts = ProcessOptions{Format: "mp4", Resolution: "0x720"}
	assert.Error(t, opts.Validate(), "zero width should fail")

	opts = ProcessOptions{Format: "mp4", Resolution: "-1280x720"}
	assert.Error(t, opts.Validate(), "negative width should fail")

	// 啟用銳化時 luma 參數必須為正
	opts = ProcessOptions{Format: "mp4", SharpenEnabled: true, LumaSizeX: 7, LumaSizeY: 7, LumaAmount: 1.5}
	assert.NoError(t, opts.Validate())

	opts = ProcessOptions{Format: "mp4", SharpenEnabled: true, LumaSizeX: 0, LumaSizeY: 7, LumaAmount: 1.5}
	assert.Error(t, opts.Validate(), "zero luma size should fail")

	opts = ProcessOptions{Format: "mp4", SharpenEnabled: true, LumaSizeX: 7, LumaSizeY: 7, LumaAmount: 0}
	assert.Error(t, opts.Validate(), "zero luma amount should fail")

	// 未啟用銳化時 luma 參數不檢查
	opts = ProcessOptions{Format: "mp4", SharpenEnabled: false, LumaSizeX: 0}
	assert.NoError(t, opts.Validate())
}

func TestProcessOptionsVideoFilters(t *testing.T) {
	// 先銳化後縮放
	opts := ProcessOptions{
		Format:         "mp4",
		Resolution:     "1920x1080",
		SharpenEnabled: true,
		LumaSizeX:      7,
		LumaSizeY:      7,
		LumaAmount:     2.5,
	}
	filters := opts.VideoFilters()
	assert.Equal(t, []string{
		"unsharp=luma_msize_x=7:luma_msize_y=7:luma_amount=2.5",
		"scale=1920:1080",
	}, filters)

	// 只有縮放
	opts = ProcessOptions{Format: "mp4", Resolution: "640x480"}
	assert.Equal(t, []string{"scale=640:480"}, opts.VideoFilters())

	// 只有銳化
	opts = ProcessOptions{Format: "mp4", SharpenEnabled: true, LumaSizeX: 3, LumaSizeY: 3, LumaAmount: 1}
	assert.Equal(t, []string{"unsharp=luma_msize_x=3:luma_msize_y=3:luma_amount=1"}, opts.VideoFilters())

	// 什麼都沒有
	opts = ProcessOptions{Format: "mp4"}
	assert.Empty(t, opts.VideoFilters())
}
