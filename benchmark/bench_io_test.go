package benchmark

import (
	"bytes"
	"io"
	"testing"

	archio "github.com/dzonerzy/go-archons/io"
)

// Category: io

func BenchmarkIO_Logger(b *testing.B) {
	m := archio.New().WithOut(io.Discard).WithErr(io.Discard)
	b.Run("Plain", func(b *testing.B) {
		l := archio.NewLogger(m.NoColor())
		for i := 0; i < b.N; i++ {
			l.Info("parsed %d arguments", i)
		}
	})
	b.Run("Colored", func(b *testing.B) {
		l := archio.NewLogger(archio.New().WithOut(io.Discard).WithErr(io.Discard).ForceColor())
		for i := 0; i < b.N; i++ {
			l.Warning("parsed %d arguments", i)
		}
	})
	b.Run("Filtered", func(b *testing.B) {
		l := archio.NewLogger(m).WithLevel(archio.LevelError)
		for i := 0; i < b.N; i++ {
			l.Debug("parsed %d arguments", i)
		}
	})
}

func BenchmarkIO_Write(b *testing.B) {
	buf := &bytes.Buffer{}
	m := archio.New().WithOut(buf)
	data := []byte("some output line\n")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Out().Write(data)
		buf.Reset()
	}
}
