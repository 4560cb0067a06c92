package audio

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hajimehoshi/go-mp3"

	"voicecast-server-go/internal/domain/batch"
	"voicecast-server-go/internal/domain/eventbus"
	"voicecast-server-go/internal/platform/errors"
	"voicecast-server-go/internal/platform/logging"
)

// Artifact is the assembled final output.
type Artifact struct {
	FilePath  string  `json:"file_path"`
	SizeBytes int64   `json:"size_bytes"`
	Fragments int     `json:"fragments"`
	Duration  float64 `json:"duration_seconds,omitempty"`
}

// Assembler concatenates per-line fragments into one artifact. Fragments are
// assumed homogeneous in codec since they come from one backend, no
// re-encoding happens here.
type Assembler struct {
	logger *logging.Logger
}

func NewAssembler(logger *logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Assembler{logger: logger}
}

// Assemble writes the ordered concatenation of all successful fragments to
// outputPath, prefixed by the narrator fragment when one is supplied. Failed
// lines contribute no audio. With no successful fragments and no narrator
// there is nothing to assemble, which is a distinct error rather than an
// empty artifact.
func (a *Assembler) Assemble(results []batch.GenerationResult, narratorPath, outputPath string) (*Artifact, error) {
	fragments := successfulFragments(results)

	if len(fragments) == 0 && narratorPath == "" {
		return nil, errors.New(errors.KindAssembly, "assemble", "nothing to assemble")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, errors.Wrap(errors.KindAssembly, "assemble", "failed to create output directory", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, errors.Wrap(errors.KindAssembly, "assemble", "failed to create artifact", err)
	}
	defer out.Close()

	written := 0
	if narratorPath != "" {
		if err := appendFile(out, narratorPath); err != nil {
			os.Remove(outputPath)
			return nil, errors.Wrap(errors.KindAssembly, "assemble", "failed to append narrator fragment", err)
		}
		written++
	}
	for _, path := range fragments {
		if err := appendFile(out, path); err != nil {
			os.Remove(outputPath)
			return nil, errors.Wrap(errors.KindAssembly, "assemble", "failed to append fragment", err)
		}
		written++
	}

	info, err := out.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.KindAssembly, "assemble", "failed to stat artifact", err)
	}

	artifact := &Artifact{
		FilePath:  outputPath,
		SizeBytes: info.Size(),
		Fragments: written,
		Duration:  a.probeDuration(outputPath),
	}

	a.logger.InfoTag("ASSEMBLE", "artifact %s: %d fragments, %d bytes",
		filepath.Base(outputPath), artifact.Fragments, artifact.SizeBytes)
	eventbus.Publish(eventbus.EventArtifactAssembled, eventbus.ArtifactEventData{
		FilePath:  artifact.FilePath,
		Fragments: artifact.Fragments,
		Duration:  artifact.Duration,
	})

	return artifact, nil
}

// successfulFragments filters to successful results and re-sorts by line
// number. Results arrive ordered from the orchestrator, but assembly does not
// depend on that.
func successfulFragments(results []batch.GenerationResult) []string {
	succeeded := make([]batch.GenerationResult, 0, len(results))
	for _, r := range results {
		if r.Success && r.FilePath != "" {
			succeeded = append(succeeded, r)
		}
	}
	sort.Slice(succeeded, func(i, j int) bool {
		return succeeded[i].LineNumber < succeeded[j].LineNumber
	})

	paths := make([]string, len(succeeded))
	for i, r := range succeeded {
		paths[i] = r.FilePath
	}
	return paths
}

func appendFile(out *os.File, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(out, in)
	return err
}

// probeDuration decodes the artifact to report its playing time. Probing is
// best effort, a fragment format go-mp3 cannot parse just leaves the
// duration unset.
func (a *Assembler) probeDuration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		a.logger.DebugTag("ASSEMBLE", "duration probe skipped: %v", err)
		return 0
	}

	// Decoded output is 16-bit stereo, 4 bytes per sample frame.
	return float64(decoder.Length()) / 4.0 / float64(decoder.SampleRate())
}
