package imglist

import "fmt"

// Order selects where Add places new entries.
type Order int

const (
	// OrderNone appends in discovery order.
	OrderNone Order = iota
	// OrderName sorts lexicographically by source.
	OrderName
	// OrderNumeric sorts like OrderName but compares embedded digit runs as
	// integers, so "img2" sorts before "img10".
	OrderNumeric
	// OrderMtime sorts by file modification time, oldest first.
	OrderMtime
	// OrderSize sorts by file size, smallest first.
	OrderSize
	// OrderRandom inserts at a uniformly random position.
	OrderRandom
)

func (o Order) String() string {
	switch o {
	case OrderNone:
		return "none"
	case OrderName:
		return "name"
	case OrderNumeric:
		return "numeric"
	case OrderMtime:
		return "mtime"
	case OrderSize:
		return "size"
	case OrderRandom:
		return "random"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// ParseOrder maps a policy name to its Order. Used by the CLI flags.
func ParseOrder(name string) (Order, error) {
	switch name {
	case "none", "":
		return OrderNone, nil
	case "name":
		return OrderName, nil
	case "numeric":
		return OrderNumeric, nil
	case "mtime":
		return OrderMtime, nil
	case "size":
		return OrderSize, nil
	case "random":
		return OrderRandom, nil
	default:
		return OrderNone, fmt.Errorf("unknown order %q", name)
	}
}

// less reports whether a sorts strictly before b under this order.
// OrderNone and OrderRandom never reach it.
func (o Order) less(a, b *Entry) bool {
	switch o {
	case OrderName:
		return a.Source < b.Source
	case OrderNumeric:
		return numericCompare(string(a.Source), string(b.Source)) < 0
	case OrderMtime:
		if !a.Mtime.Equal(b.Mtime) {
			return a.Mtime.Before(b.Mtime)
		}
		return a.Source < b.Source
	case OrderSize:
		if a.Size != b.Size {
			return a.Size < b.Size
		}
		return a.Source < b.Source
	default:
		return false
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// numericCompare orders strings byte-wise but treats runs of digits as
// integers: leading zeros are skipped, then a longer run of significant
// digits is the larger number, and equal-length runs compare byte-wise.
func numericCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si, sj := i, j
			for si < len(a) && a[si] == '0' {
				si++
			}
			for sj < len(b) && b[sj] == '0' {
				sj++
			}
			ei, ej := si, sj
			for ei < len(a) && isDigit(a[ei]) {
				ei++
			}
			for ej < len(b) && isDigit(b[ej]) {
				ej++
			}
			if n, m := ei-si, ej-sj; n != m {
				if n < m {
					return -1
				}
				return 1
			}
			for k := 0; k < ei-si; k++ {
				if a[si+k] != b[sj+k] {
					if a[si+k] < b[sj+k] {
						return -1
					}
					return 1
				}
			}
			i, j = ei, ej
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}
