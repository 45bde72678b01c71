// Package warmup 预先抓取所有 Host 映射表中声明的模板。
package warmup

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/remote-view/internal/remote"
)

// DefaultConcurrency 是 warmup-concurrency 未配置时的并发上限。
const DefaultConcurrency = 4

// ViewFinder 由 finder.Finder 实现。
type ViewFinder interface {
	Find(ctx context.Context, name string) (string, error)
}

// Target 是一次预热请求。
type Target struct {
	Namespace  string
	Name       string
	Identifier string
}

// Result 记录单个 Target 的结果，Err 非空时 Path 为空。
type Result struct {
	Target
	Path    string
	Err     error
	Elapsed time.Duration
}

// Report 的 Results 与 Targets 顺序一致，不受并发完成顺序影响。
type Report struct {
	Results []Result
}

// Failed 返回失败条目数。
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func (r Report) Succeeded() int {
	return len(r.Results) - r.Failed()
}

// Targets 按命名空间与映射键的字典序列出所有预热目标。
func Targets(hosts []remote.HostRoute, parser remote.Parser) []Target {
	var targets []Target
	for _, host := range hosts {
		for _, name := range host.Config.MappingKeys() {
			targets = append(targets, Target{
				Namespace:  host.Namespace,
				Name:       name,
				Identifier: parser.Remote(host.Namespace, name),
			})
		}
	}
	return targets
}

// Warmer 以有限并发执行预热，单个失败不会中断其余目标。
type Warmer struct {
	finder      ViewFinder
	concurrency int
	logger      *logrus.Logger
}

func New(finder ViewFinder, concurrency int, logger *logrus.Logger) *Warmer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Warmer{finder: finder, concurrency: concurrency, logger: logger}
}

// Run 执行全部目标。ctx 取消后尚未开始的目标会以 ctx.Err() 记为失败。
func (w *Warmer) Run(ctx context.Context, targets []Target) Report {
	results := make([]Result, len(targets))

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = w.warm(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	w.logger.WithFields(logrus.Fields{
		"action":    "warmup",
		"total":     len(results),
		"succeeded": report.Succeeded(),
		"failed":    report.Failed(),
	}).Info("warmup_complete")
	return report
}

func (w *Warmer) warm(ctx context.Context, target Target) Result {
	result := Result{Target: target}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	started := time.Now()
	result.Path, result.Err = w.finder.Find(ctx, target.Identifier)
	result.Elapsed = time.Since(started)

	fields := logrus.Fields{
		"action":     "warmup",
		"namespace":  target.Namespace,
		"name":       target.Name,
		"elapsed_ms": result.Elapsed.Milliseconds(),
	}
	if result.Err != nil {
		w.logger.WithFields(fields).WithError(result.Err).Warn("warmup_failed")
	} else {
		fields["path"] = result.Path
		w.logger.WithFields(fields).Debug("warmup_done")
	}
	return result
}
