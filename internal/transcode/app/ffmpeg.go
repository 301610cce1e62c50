package app

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"video_editing_platform/pkg/logger"
)

// EncodeSpec 單次編碼的輸入輸出與轉碼參數
type EncodeSpec struct {
	InputPath  string
	OutputPath string
	// Codec 空字串表示不指定，由 ffmpeg 依輸出格式選預設編碼器
	Codec string
	// VideoFilters 依序合併為單一 -vf 表達式
	VideoFilters []string
}

// Encoder 外部編碼器的抽象，progress callback 回報 0~100 的百分比
type Encoder interface {
	Transcode(ctx context.Context, spec EncodeSpec, onProgress func(percent float64)) error
}

// FFmpegEncoder 以外部 ffmpeg process 實作 Encoder
type FFmpegEncoder struct {
	BinPath   string
	ProbePath string
}

// NewFFmpegEncoder create FFmpegEncoder，檢查執行檔是否存在
func NewFFmpegEncoder(binPath, probePath string) (*FFmpegEncoder, error) {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	if probePath == "" {
		probePath = "ffprobe"
	}
	if _, err := exec.LookPath(binPath); err != nil {
		return nil, fmt.Errorf("找不到 ffmpeg 執行檔 [%s]: %w", binPath, err)
	}
	if _, err := exec.LookPath(probePath); err != nil {
		return nil, fmt.Errorf("找不到 ffprobe 執行檔 [%s]: %w", probePath, err)
	}
	return &FFmpegEncoder{BinPath: binPath, ProbePath: probePath}, nil
}

// buildArgs 組出 ffmpeg 參數；codec 與 filters 都是可選，
// filters 依列出順序以逗號合併為單一 -vf 表達式
func buildArgs(spec EncodeSpec) []string {
	args := []string{"-y", "-i", spec.InputPath}

	if spec.Codec != "" {
		args = append(args, "-c:v", spec.Codec)
	}
	if len(spec.VideoFilters) > 0 {
		args = append(args, "-vf", strings.Join(spec.VideoFilters, ","))
	}

	// 進度輸出到 stdout，stderr 留給錯誤訊息
	args = append(args, "-progress", "pipe:1", "-nostats", spec.OutputPath)
	return args
}

// Transcode 執行 ffmpeg，邊執行邊解析 -progress 輸出回報百分比
func (f *FFmpegEncoder) Transcode(ctx context.Context, spec EncodeSpec, onProgress func(percent float64)) error {
	duration, err := f.probeDuration(ctx, spec.InputPath)
	if err != nil {
		// 探測不到時間長度仍可轉碼，只是無法回報進度
		logger.Log.Warn(fmt.Sprintf("ffprobe 取得影片長度失敗，進度回報停用: %v", err))
		duration = 0
	}

	cmd := exec.CommandContext(ctx, f.BinPath, buildArgs(spec)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("建立 stdout pipe 失敗: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("啟動 ffmpeg 失敗: %w", err)
	}

	// 逐行解析 key=value 形式的進度輸出
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if duration <= 0 || onProgress == nil {
			continue
		}
		if percent, ok := parseProgressLine(line, duration); ok {
			onProgress(percent)
		}
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg 執行失敗: %v, stderr: %s", err, stderr.String())
	}
	return nil
}

// parseProgressLine 解析 out_time_ms 行，-progress 的 out_time_ms 單位其實是微秒
func parseProgressLine(line string, durationSec float64) (float64, bool) {
	const prefix = "out_time_ms="
	if !strings.HasPrefix(line, prefix) {
		return 0, false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	micros, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || micros < 0 {
		return 0, false
	}

	percent := float64(micros) / 1e6 / durationSec * 100
	if percent > 100 {
		percent = 100
	}
	return percent, true
}

// probeDuration 以 ffprobe 取得影片長度（秒）
func (f *FFmpegEncoder) probeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.ProbePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe 執行失敗: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("解析影片長度失敗: %w", err)
	}
	return duration, nil
}
