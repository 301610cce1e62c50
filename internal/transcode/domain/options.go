package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProcessOptions 轉碼請求的選項，在 gateway 邊界完成驗證，
// 不合法的組合直接回 client error，不會流進 pipeline
type ProcessOptions struct {
	// Resolution 目標解析度 "WxH"，空字串表示不縮放
	Resolution string `json:"resolution"`
	// SharpenEnabled 是否套用 luma 銳化
	SharpenEnabled bool `json:"sharpenEnabled"`
	// LumaSizeX / LumaSizeY unsharp 的 matrix 尺寸（奇數 3~23）
	LumaSizeX int `json:"lumaSizeX"`
	LumaSizeY int `json:"lumaSizeY"`
	// LumaAmount unsharp 的強度
	LumaAmount float64 `json:"lumaAmount"`
	// Codec 輸出編碼器，空字串表示預設
	Codec string `json:"codec"`
	// Format 輸出副檔名（必填），決定 outputKey 的副檔名與 content type
	Format string `json:"format"`
}

// Validate 檢查選項組合是否合法
func (o ProcessOptions) Validate() error {
	if strings.TrimSpace(o.Format) == "" {
		return errors.New("format required")
	}

	if o.Resolution != "" {
		if _, _, err := o.parseResolution(); err != nil {
			return err
		}
	}

	if o.SharpenEnabled {
		if o.LumaSizeX <= 0 || o.LumaSizeY <= 0 {
			return errors.New("luma matrix size must be positive")
		}
		if o.LumaAmount <= 0 {
			return errors.New("luma amount must be positive")
		}
	}

	return nil
}

// VideoFilters 依序建立 filter 表達式：先銳化後縮放
func (o ProcessOptions) VideoFilters() []string {
	var filters []string

	if o.SharpenEnabled {
		filters = append(filters, fmt.Sprintf(
			"unsharp=luma_msize_x=%d:luma_msize_y=%d:luma_amount=%g",
			o.LumaSizeX, o.LumaSizeY, o.LumaAmount,
		))
	}

	if o.Resolution != "" {
		if width, height, err := o.parseResolution(); err == nil {
			filters = append(filters, fmt.Sprintf("scale=%d:%d", width, height))
		}
	}

	return filters
}

// parseResolution 解析 "WxH" 格式的解析度
func (o ProcessOptions) parseResolution() (int, int, error) {
	parts := strings.Split(o.Resolution, "x")
	if len(parts) != 2 {
		return 0, 0, errors.New("resolution must be WxH")
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return 0, 0, errors.New("resolution width must be a positive number")
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return 0, 0, errors.New("resolution height must be a positive number")
	}

	return width, height, nil
}
