package qfset

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

// benchSizes mirrors the teacher's benchSizes harness, parameterized by
// element count instead of table geometry since qfset hides geometry
// behind its load-factor policy.
func benchSizes(f func(b *testing.B, n int)) func(*testing.B) {
	cases := []int{64, 512, 4096, 65536}
	return func(b *testing.B) {
		for _, n := range cases {
			b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
				f(b, n)
			})
		}
	}
}

func genStrings(n int) []string {
	gofakeit.Seed(1)
	out := make([]string, n)
	for i := range out {
		out[i] = gofakeit.UUID()
	}
	return out
}

func BenchmarkInsertGrow(b *testing.B) {
	b.Run("", benchSizes(func(b *testing.B, n int) {
		keys := genStrings(n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			s := New[string]()
			for _, k := range keys {
				s.Insert(k)
			}
		}
	}))
}

func BenchmarkInsertPreAllocated(b *testing.B) {
	b.Run("", benchSizes(func(b *testing.B, n int) {
		keys := genStrings(n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			s := NewWithHint[string](n)
			for _, k := range keys {
				s.Insert(k)
			}
		}
	}))
}

func BenchmarkContainsHit(b *testing.B) {
	b.Run("", benchSizes(func(b *testing.B, n int) {
		keys := genStrings(n)
		s := NewWithHint[string](n)
		for _, k := range keys {
			s.Insert(k)
		}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			s.Contains(keys[i%len(keys)])
		}
	}))
}
