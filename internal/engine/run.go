package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"requote/internal/diag"
	"requote/pkg/contract"
)

// - 单点并发：仅此层管理并发；原子组件均为同步、无内部并发。
// - 文件间彼此独立：单文件失败不阻止其余文件继续处理。
// - 聚合输出按输入顺序拼接；就地改写各自写回源路径。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader  contract.Reader
	Scanner contract.Scanner
	Writer  contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Inputs      []string
	Concurrency int
	Style       contract.StyleConfig
	// Inplace: 每个文件写回自身路径（原子替换）。
	Inplace bool
	// Output: 非就地模式的聚合目标（"-" 表示 stdout）。
	Output string
}

type document struct {
	fileID contract.FileID
	src    string
}

type result struct {
	out string
	err error
}

// Run 执行完整流程：Reader → (并发) Requote → Writer。
// 约束：
// - 每文件独立处理；记录首错但不中断其余文件；
// - 返回首个文件级错误（调用方以非零码退出）；ctx 取消立即生效；
// - 聚合模式对 Writer 仅调用一次，按输入顺序流式拼接。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) error {
	if err := sanity(comp, set); err != nil {
		return fmt.Errorf("sanity: %w", err)
	}

	// 全量读入：引擎按完整文档工作（无流式）
	rtimer := (*diag.Timer)(nil)
	if logger != nil {
		rtimer = logger.Start("reader", "iterate")
	}
	var docs []document
	err := comp.Reader.Iterate(ctx, set.Inputs, func(fid contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		docs = append(docs, document{fileID: fid, src: string(b)})
		return nil
	})
	if err != nil {
		if logger != nil {
			logger.Error("reader", string(diag.Classify(err)), "iterate failed", nil)
			diag.IncOp("reader", "error", "error")
		}
		return fmt.Errorf("reader iterate: %w", err)
	}
	if rtimer != nil {
		rtimer.Finish("iterate", int64(len(docs)))
		diag.IncOp("reader", "finish", "success")
	}

	if t := diag.GetTerminal(); t != nil {
		t.RunStart(set.Concurrency, len(docs))
	}

	// 并发改写：各文件独立，结果按原索引落位
	results := make([]result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	limit := set.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := range docs {
		i := i
		g.Go(func() error {
			d := docs[i]
			t0 := time.Now()
			etimer := (*diag.Timer)(nil)
			if logger != nil {
				etimer = logger.StartWith("engine", "requote", string(d.fileID))
			}
			out, err := Requote(gctx, comp.Scanner, d.fileID, d.src, set.Style)
			results[i] = result{out: out, err: err}
			if err != nil {
				if logger != nil {
					code := diag.Classify(err)
					logger.ErrorWith("engine", string(code), "requote failed", nil, string(d.fileID))
					diag.IncOp("engine", "error", "error")
					if code != diag.CodeUnknown {
						diag.IncError("engine", string(code))
					}
				}
				if t := diag.GetTerminal(); t != nil {
					t.FileFinish(string(d.fileID), false, time.Since(t0))
				}
				// 取消向全体扩散；文档级错误只记录不扩散
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			if etimer != nil {
				etimer.Finish("requote", int64(len(out)))
				diag.IncOp("engine", "finish", "success")
			}
			if t := diag.GetTerminal(); t != nil {
				t.FileFinish(string(d.fileID), true, time.Since(t0))
			}
			return nil
		})
	}
	if werr := g.Wait(); werr != nil {
		return werr
	}

	var firstErr error
	for i := range results {
		if results[i].err != nil {
			firstErr = results[i].err
			break
		}
	}

	if set.Inplace {
		if err := writeInplace(ctx, comp, docs, results, logger); err != nil && firstErr == nil {
			firstErr = err
		}
	} else {
		if err := writeAggregate(ctx, comp, set, results, logger); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeInplace 将每个成功文档写回其源路径；失败文档保持原文件不动。
func writeInplace(ctx context.Context, comp Components, docs []document, results []result, logger *diag.Logger) error {
	var firstErr error
	for i := range docs {
		if results[i].err != nil {
			continue
		}
		wtimer := (*diag.Timer)(nil)
		if logger != nil {
			wtimer = logger.StartWith("writer", "write", string(docs[i].fileID))
		}
		err := comp.Writer.Write(ctx, contract.ArtifactID(docs[i].fileID), strings.NewReader(results[i].out))
		if err != nil {
			if logger != nil {
				logger.ErrorWith("writer", string(diag.Classify(err)), "write failed", nil, string(docs[i].fileID))
				diag.IncOp("writer", "error", "error")
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if wtimer != nil {
			wtimer.Finish("write", int64(len(results[i].out)))
			diag.IncOp("writer", "finish", "success")
		}
	}
	return firstErr
}

// writeAggregate 将成功文档按输入顺序拼接为单一工件（stdout 或输出路径）。
func writeAggregate(ctx context.Context, comp Components, set Settings, results []result, logger *diag.Logger) error {
	rs := make([]io.Reader, 0, len(results))
	for i := range results {
		if results[i].err != nil {
			continue
		}
		rs = append(rs, strings.NewReader(results[i].out))
	}
	id := contract.ArtifactID(set.Output)
	wtimer := (*diag.Timer)(nil)
	if logger != nil {
		wtimer = logger.StartWith("writer", "write", string(id))
	}
	if err := comp.Writer.Write(ctx, id, io.MultiReader(rs...)); err != nil {
		if logger != nil {
			logger.ErrorWith("writer", string(diag.Classify(err)), "write failed", nil, string(id))
			diag.IncOp("writer", "error", "error")
		}
		return err
	}
	if wtimer != nil {
		wtimer.Finish("write", int64(len(rs)))
		diag.IncOp("writer", "finish", "success")
	}
	return nil
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Scanner == nil || c.Writer == nil {
		return errors.New("engine: missing components")
	}
	if len(s.Inputs) == 0 {
		return errors.New("engine: empty inputs")
	}
	if !s.Inplace && s.Output == "" {
		return errors.New("engine: empty output target")
	}
	return nil
}
