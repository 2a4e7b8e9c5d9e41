package apriori

// TransactionStore is an immutable, ordered collection of transactions.
// Every transaction is held in canonical Itemset form so that its
// subsequences can be enumerated deterministically.
type TransactionStore struct {
	txns     []Itemset
	maxWidth int
}

// NewTransactionStore normalizes each transaction (drops empty labels,
// removes duplicates, sorts) and returns the resulting store. Empty
// transactions are kept: they count toward Len but support no itemset.
func NewTransactionStore(txns [][]Item) *TransactionStore {
	s := &TransactionStore{txns: make([]Itemset, len(txns))}
	for i, t := range txns {
		s.txns[i] = NewItemset(t...)
		if len(s.txns[i]) > s.maxWidth {
			s.maxWidth = len(s.txns[i])
		}
	}
	return s
}

// Len returns the number of transactions, including empty ones.
func (s *TransactionStore) Len() int {
	return len(s.txns)
}

// At returns the i-th transaction. The result must not be modified.
func (s *TransactionStore) At(i int) Itemset {
	return s.txns[i]
}

// MaxWidth returns the size of the largest transaction.
func (s *TransactionStore) MaxWidth() int {
	return s.maxWidth
}

// chunks splits [0, Len) into at most n contiguous ranges of similar size.
func (s *TransactionStore) chunks(n int) [][2]int {
	total := len(s.txns)
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	if n == 0 {
		return nil
	}
	out := make([][2]int, 0, n)
	size := total / n
	rem := total % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		out = append(out, [2]int{start, end})
		start = end
	}
	return out
}
