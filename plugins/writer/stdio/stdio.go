package stdio

import (
	"bufio"
	"context"
	"io"
	"os"

	"requote/pkg/contract"
)

// Options: 最小必要选项。
type Options struct {
	// BufSize: 写缓冲区大小；<=0 使用实现默认。
	BufSize int `json:"buf_size,omitempty"`
}

// Stdout 将聚合工件写到标准输出。
// id 仅用于日志定位，不参与路径映射。
type Stdout struct {
	w       io.Writer
	bufSize int
}

// New 创建标准输出 Writer；w 为 nil 时使用 os.Stdout。
func New(opts *Options, w io.Writer) *Stdout {
	bsz := 64 * 1024
	if opts != nil && opts.BufSize > 0 {
		bsz = opts.BufSize
	}
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{w: w, bufSize: bsz}
}

var _ contract.Writer = (*Stdout)(nil)

// Write 将 r 的全部字节拷贝到标准输出。
func (s *Stdout) Write(ctx context.Context, id contract.ArtifactID, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(s.w, s.bufSize)
	if _, err := io.Copy(bw, readerWithCtx(ctx, r)); err != nil {
		return err
	}
	return bw.Flush()
}

func readerWithCtx(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}
	return cr.r.Read(p)
}
