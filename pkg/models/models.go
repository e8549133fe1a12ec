package models

import "time"

// Category is the semantic file-type classification used for dispatch.
type Category string

const (
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryOffice   Category = "office"
	CategoryEbook    Category = "ebook"
	CategoryUnknown  Category = "unknown"
)

// Tool identifies an external conversion backend.
type Tool string

const (
	ToolFFmpeg      Tool = "ffmpeg"
	ToolImage       Tool = "image"
	ToolPandoc      Tool = "pandoc"
	ToolLibreOffice Tool = "libreoffice"
	ToolCalibre     Tool = "calibre"
	ToolNone        Tool = ""
)

// QualityPreset carries the numeric encode knobs for one named tier.
type QualityPreset struct {
	Name         string
	CRF          string
	AudioBitrate string
	ImageQuality int
}

// QualityPresets is the fixed tier table. It is configuration, not state:
// defined at process start and never mutated.
var QualityPresets = map[string]QualityPreset{
	"Low":    {Name: "Low", CRF: "28", AudioBitrate: "128k", ImageQuality: 60},
	"Medium": {Name: "Medium", CRF: "23", AudioBitrate: "192k", ImageQuality: 80},
	"High":   {Name: "High", CRF: "18", AudioBitrate: "256k", ImageQuality: 95},
	"Ultra":  {Name: "Ultra", CRF: "15", AudioBitrate: "320k", ImageQuality: 100},
}

// PresetFor resolves a preset by name, falling back to Medium for
// unrecognized names. A bad preset name is never a hard failure.
func PresetFor(name string) QualityPreset {
	if p, ok := QualityPresets[name]; ok {
		return p
	}
	return QualityPresets["Medium"]
}

// ConversionJob is one requested single-file conversion with resolved
// settings. Consumed exactly once by a converter; never mutated after
// creation.
type ConversionJob struct {
	InputPath  string   `json:"inputPath"`
	OutputPath string   `json:"outputPath"`
	Category   Category `json:"category"`
	Quality    string   `json:"quality"`

	// Video overrides, layered on top of the quality preset.
	Resolution string `json:"resolution,omitempty"`
	Framerate  string `json:"framerate,omitempty"`
	Codec      string `json:"codec,omitempty"`

	// Resize is an image resize spec: a percentage ("50%") or explicit
	// dimensions ("1280x720"). Empty means keep original size.
	Resize string `json:"resize,omitempty"`
}

// FailureKind classifies why a conversion did not succeed.
type FailureKind string

const (
	FailureNone            FailureKind = ""
	FailureInputNotFound   FailureKind = "input_not_found"
	FailureUnsupportedType FailureKind = "unsupported_type"
	FailureToolUnavailable FailureKind = "tool_unavailable"
	FailureNoConverter     FailureKind = "no_converter_registered"
	FailureTimeout         FailureKind = "timeout"
	FailureToolExecution   FailureKind = "tool_execution_failed"
	FailureFilesystem      FailureKind = "filesystem_error"
	FailureUnexpected      FailureKind = "unexpected"
)

// Outcome is the terminal result of executing one job. It is returned,
// never raised: a single file's failure cannot abort a batch.
type Outcome struct {
	Success  bool          `json:"success"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Failure builds a failed outcome with a classified kind.
func Failure(kind FailureKind, message string, elapsed time.Duration) Outcome {
	return Outcome{Kind: kind, Message: message, Duration: elapsed}
}

// Successful builds a succeeded outcome.
func Successful(elapsed time.Duration) Outcome {
	return Outcome{Success: true, Duration: elapsed}
}

// BatchResult aggregates outcomes across one ordered job list.
type BatchResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Total     int           `json:"total"`
	Elapsed   time.Duration `json:"elapsed"`

	// Per-category counts let callers distinguish "nothing attempted"
	// from "attempted and failed".
	SkippedByCategory map[Category]int `json:"skippedByCategory,omitempty"`
	FailedByCategory  map[Category]int `json:"failedByCategory,omitempty"`
}
