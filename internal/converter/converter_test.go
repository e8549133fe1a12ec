package converter

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fileforge/fileforge/pkg/models"
)

// recordingRunner records invocations and returns a canned response.
type recordingRunner struct {
	calls  int
	name   string
	args   []string
	result commandResult
	err    error
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	r.calls++
	r.name = name
	r.args = args
	return r.result, r.err
}

// blockingRunner waits for the context to expire, like a hung tool.
type blockingRunner struct{}

func (r *blockingRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	<-ctx.Done()
	return commandResult{ExitCode: -1}, ctx.Err()
}

func writeTempInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvert_InputNotFound(t *testing.T) {
	runner := &recordingRunner{}
	conv := NewVideoConverter("ffmpeg", Options{Runner: runner})

	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  filepath.Join(t.TempDir(), "missing.mp4"),
		OutputPath: filepath.Join(t.TempDir(), "out.mkv"),
		Quality:    "Medium",
	})

	if outcome.Success {
		t.Fatal("Expected failure for missing input")
	}
	if outcome.Kind != models.FailureInputNotFound {
		t.Errorf("Expected kind %s, got %s", models.FailureInputNotFound, outcome.Kind)
	}
	if runner.calls != 0 {
		t.Errorf("Expected no tool invocation for missing input, got %d", runner.calls)
	}
}

func TestConvert_Success(t *testing.T) {
	runner := &recordingRunner{}
	conv := NewVideoConverter("ffmpeg", Options{Runner: runner})

	input := writeTempInput(t, "in.mp4")
	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  input,
		OutputPath: filepath.Join(t.TempDir(), "nested", "out.mkv"),
		Quality:    "Medium",
	})

	if !outcome.Success {
		t.Fatalf("Expected success, got %s: %s", outcome.Kind, outcome.Message)
	}
	if runner.calls != 1 {
		t.Errorf("Expected exactly one tool invocation, got %d", runner.calls)
	}
	if runner.name != "ffmpeg" {
		t.Errorf("Expected ffmpeg invocation, got %s", runner.name)
	}
	if outcome.Duration <= 0 {
		t.Error("Expected positive duration")
	}
}

func TestConvert_CreatesOutputDirectory(t *testing.T) {
	runner := &recordingRunner{}
	conv := NewAudioConverter("ffmpeg", Options{Runner: runner})

	outDir := filepath.Join(t.TempDir(), "a", "b", "c")
	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  writeTempInput(t, "in.wav"),
		OutputPath: filepath.Join(outDir, "out.mp3"),
		Quality:    "Low",
	})

	if !outcome.Success {
		t.Fatalf("Expected success, got %s", outcome.Kind)
	}
	if _, err := os.Stat(outDir); err != nil {
		t.Errorf("Expected output directory created: %v", err)
	}
}

func TestConvert_Timeout(t *testing.T) {
	conv := NewVideoConverter("ffmpeg", Options{
		Timeout: 20 * time.Millisecond,
		Runner:  &blockingRunner{},
	})

	start := time.Now()
	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  writeTempInput(t, "in.mp4"),
		OutputPath: filepath.Join(t.TempDir(), "out.mp4"),
		Quality:    "Medium",
	})

	if outcome.Success {
		t.Fatal("Expected timeout failure")
	}
	if outcome.Kind != models.FailureTimeout {
		t.Errorf("Expected kind %s, got %s", models.FailureTimeout, outcome.Kind)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Timeout took too long to fire: %s", elapsed)
	}
}

func TestConvert_ToolNotFound(t *testing.T) {
	runner := &recordingRunner{
		result: commandResult{ExitCode: -1},
		err:    exec.ErrNotFound,
	}
	conv := NewDocumentConverter("pandoc", Options{Runner: runner})

	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  writeTempInput(t, "in.md"),
		OutputPath: filepath.Join(t.TempDir(), "out.pdf"),
	})

	if outcome.Kind != models.FailureToolUnavailable {
		t.Errorf("Expected kind %s, got %s", models.FailureToolUnavailable, outcome.Kind)
	}
}

func TestConvert_ToolFailure(t *testing.T) {
	runner := &recordingRunner{
		result: commandResult{
			Stderr:   "frame=0\nInvalid data found when processing input\n",
			ExitCode: 1,
		},
		err: errors.New("exit status 1"),
	}
	conv := NewVideoConverter("ffmpeg", Options{Runner: runner})

	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  writeTempInput(t, "in.mp4"),
		OutputPath: filepath.Join(t.TempDir(), "out.mkv"),
		Quality:    "High",
	})

	if outcome.Kind != models.FailureToolExecution {
		t.Errorf("Expected kind %s, got %s", models.FailureToolExecution, outcome.Kind)
	}
	if !strings.Contains(outcome.Message, "Invalid data found") {
		t.Errorf("Expected diagnostic line in message, got %q", outcome.Message)
	}
}

func TestExtractToolError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		stdout string
		want   string
	}{
		{
			name:   "last marker line wins",
			stderr: "Error: first problem\nsome progress\nerror: the real cause\n",
			want:   "error: the real cause",
		},
		{
			name:   "falls back to stdout",
			stdout: "conversion failed: bad page",
			want:   "conversion failed: bad page",
		},
		{
			name: "no diagnostics",
			want: "tool exited with failure and produced no diagnostics",
		},
		{
			name:   "no marker keeps tail",
			stderr: "some chatter\nfinal state line",
			want:   "some chatter\nfinal state line",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractToolError(tt.stderr, tt.stdout)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractToolError_Bounded(t *testing.T) {
	long := "error: " + strings.Repeat("x", 2000)
	got := extractToolError(long, "")
	if len(got) > maxErrorLen {
		t.Errorf("Expected message bounded at %d, got %d", maxErrorLen, len(got))
	}

	noMarker := strings.Repeat("y", 2000)
	got = extractToolError(noMarker, "")
	if len(got) > maxErrorLen {
		t.Errorf("Expected tail-truncated message bounded at %d, got %d", maxErrorLen, len(got))
	}
	if !strings.HasPrefix(got, "...") {
		t.Errorf("Expected tail truncation to keep the end, got prefix %q", got[:10])
	}
}

func TestBuildVideoArgs(t *testing.T) {
	job := models.ConversionJob{
		InputPath:  "in.mp4",
		OutputPath: "out.mkv",
	}
	args := buildVideoArgs(job, models.PresetFor("Medium"))

	joined := strings.Join(args, " ")
	for _, want := range []string{"-i in.mp4", "-crf 23", "-b:a 192k", "-y out.mkv"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}
	for _, notWant := range []string{"-s", "-r ", "-c:v"} {
		if strings.Contains(joined, notWant) {
			t.Errorf("Expected no %q without overrides, got %q", notWant, joined)
		}
	}
}

func TestBuildVideoArgs_Overrides(t *testing.T) {
	job := models.ConversionJob{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Resolution: "1280x720",
		Framerate:  "30",
		Codec:      "libx265",
	}
	joined := strings.Join(buildVideoArgs(job, models.PresetFor("Ultra")), " ")
	for _, want := range []string{"-crf 15", "-b:a 320k", "-s 1280x720", "-r 30", "-c:v libx265"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}
}

func TestBuildVideoArgs_OriginalSkipsOverrides(t *testing.T) {
	job := models.ConversionJob{
		InputPath:  "in.mp4",
		OutputPath: "out.mp4",
		Resolution: "Original",
		Framerate:  "Original",
	}
	joined := strings.Join(buildVideoArgs(job, models.PresetFor("Low")), " ")
	if strings.Contains(joined, "-s ") || strings.Contains(joined, "-r ") {
		t.Errorf("Expected Original overrides omitted, got %q", joined)
	}
}

func TestOfficeConvert_MissingOutput(t *testing.T) {
	// soffice exits zero without producing output on some inputs; the
	// converter must catch that.
	runner := &recordingRunner{}
	conv := NewOfficeConverter("soffice", Options{Runner: runner})

	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  writeTempInput(t, "report.docx"),
		OutputPath: filepath.Join(t.TempDir(), "report.pdf"),
	})

	if outcome.Success {
		t.Fatal("Expected failure when no output file was produced")
	}
	if outcome.Kind != models.FailureToolExecution && outcome.Kind != models.FailureFilesystem {
		t.Errorf("Expected execution or filesystem failure, got %s", outcome.Kind)
	}
}

func TestOfficeConvert_RenamesStemOutput(t *testing.T) {
	input := writeTempInput(t, "report.docx")
	outDir := t.TempDir()

	// Simulate soffice dropping report.pdf into the out dir.
	runner := &producingRunner{path: filepath.Join(outDir, "report.pdf")}
	conv := NewOfficeConverter("soffice", Options{Runner: runner})

	target := filepath.Join(outDir, "renamed.pdf")
	outcome := conv.Convert(context.Background(), models.ConversionJob{
		InputPath:  input,
		OutputPath: target,
	})

	if !outcome.Success {
		t.Fatalf("Expected success, got %s: %s", outcome.Kind, outcome.Message)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("Expected output at requested path: %v", err)
	}
}

// producingRunner fakes a tool that writes its output file.
type producingRunner struct {
	path string
}

func (r *producingRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	if err := os.WriteFile(r.path, []byte("pdf"), 0644); err != nil {
		return commandResult{ExitCode: -1}, err
	}
	return commandResult{}, nil
}
