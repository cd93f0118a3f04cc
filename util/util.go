package util

import (
	"os"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// Mod is the Euclidean remainder: the result always lies in [0, |m|).
func Mod[A constraints.Signed](n A, m A) A {
	r := n % m
	if r < 0 {
		if m < 0 {
			return r - m
		}
		return r + m
	}
	return r
}

// FloorDiv is the division that pairs with Mod, so that
// n == FloorDiv(n, m)*m + Mod(n, m).
func FloorDiv[A constraints.Signed](n A, m A) A {
	return (n - Mod(n, m)) / m
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetSortedKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	slices.Sort(keys)
	return keys
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0777)
}
