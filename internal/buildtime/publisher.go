package buildtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sjc5/kit/pkg/fsutil"
	"github.com/sjc5/lux/internal/common"
	"github.com/sjc5/lux/internal/util"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const maxConcurrentCopies = 100

type PublishStep string

const (
	PublishStepCleanDist   PublishStep = "clean-dist"
	PublishStepCopyDist    PublishStep = "copy-dist"
	PublishStepCopyImages  PublishStep = "copy-images"
	PublishStepRemoveBuild PublishStep = "remove-build"
)

// PublishError reports the step a publish stopped at. Steps before it stay
// applied; nothing is rolled back.
type PublishError struct {
	Step PublishStep
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish step %s failed: %v", e.Step, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

type PublishReport struct {
	FilesCopied int
	DistDigest  string // fingerprint of the published dist tree
}

type publisher struct {
	cfg    *common.Config
	mode   common.Mode
	sem    *semaphore.Weighted
	copied atomic.Int64
}

// Publish relocates compiled assets from the build dir into the public dir:
// (1) production only, clear <public>/dist; (2) copy <build>/dist;
// (3) copy <build>/images; (4) delete <build>. Steps run strictly in order.
func Publish(cfg *common.Config, mode common.Mode) (*PublishReport, error) {
	p := &publisher{cfg: cfg, mode: mode, sem: semaphore.NewWeighted(maxConcurrentCopies)}

	buildDir := cfg.GetBuildDir()
	publicDir := cfg.GetPublicDir()
	publicDist := filepath.Join(publicDir, common.DistDirName)

	steps := []struct {
		name PublishStep
		run  func() error
	}{
		{PublishStepCleanDist, func() error {
			if !mode.Production {
				return nil
			}
			return os.RemoveAll(publicDist)
		}},
		{PublishStepCopyDist, func() error {
			return p.copyDir(filepath.Join(buildDir, common.DistDirName), publicDist)
		}},
		{PublishStepCopyImages, func() error {
			return p.copyDir(filepath.Join(buildDir, common.ImagesDirName), filepath.Join(publicDir, common.ImagesDirName))
		}},
		{PublishStepRemoveBuild, func() error {
			return os.RemoveAll(buildDir)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			return nil, &common.OpError{
				Op:   "publish",
				Kind: common.KindPublish,
				Path: buildDir,
				Err:  &PublishError{Step: step.name, Err: err},
			}
		}
	}

	digest, _, err := util.HashTree(publicDist)
	if err != nil {
		return nil, fmt.Errorf("error fingerprinting %s: %w", publicDist, err)
	}
	return &PublishReport{FilesCopied: int(p.copied.Load()), DistDigest: digest}, nil
}

// copyDir copies every file under src into dst, overwriting what is there.
// A missing src is an error.
func (p *publisher) copyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("error reading source dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	var g errgroup.Group
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking %s: %w", src, err)
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("error getting relative path: %w", err)
		}
		if p.isExcluded(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0755)
		}

		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			return fmt.Errorf("error acquiring semaphore: %w", err)
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			if err := fsutil.CopyFile(path, filepath.Join(dst, rel)); err != nil {
				return fmt.Errorf("error copying %s: %w", rel, err)
			}
			p.copied.Add(1)
			return nil
		})
		return nil
	})
	return errors.Join(walkErr, g.Wait())
}

func (p *publisher) isExcluded(rel string) bool {
	if rel == "." {
		return false
	}
	for _, pattern := range p.cfg.PublishExclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
