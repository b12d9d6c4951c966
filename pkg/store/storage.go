package store

// Storage is the interface for the underlying key-value store
type Storage interface {
	// Begin starts a new transaction. Read-only transactions observe a
	// snapshot taken when Begin returns.
	Begin(writable bool) (Transaction, error)

	// Close closes the storage
	Close() error

	// Sync flushes writes to disk
	Sync() error
}

// Transaction represents a storage transaction with snapshot isolation
type Transaction interface {
	// Get retrieves a value by key
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair
	Set(table Table, key, value []byte) error

	// Delete removes a key
	Delete(table Table, key []byte) error

	// Scan iterates over every key starting with prefix.
	// A nil prefix scans the whole table.
	Scan(table Table, prefix []byte) (Iterator, error)

	// ScanRange iterates over keys in [start, end).
	// A nil end scans to the end of the table.
	ScanRange(table Table, start, end []byte) (Iterator, error)

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error
}

// Iterator iterates over key-value pairs
type Iterator interface {
	// Next advances to the next item
	Next() bool

	// Key returns the current key (without the table prefix)
	Key() []byte

	// Value returns the current value
	Value() ([]byte, error)

	// Close closes the iterator
	Close() error
}

// Table represents a logical table/column family in the storage
type Table byte

const (
	// Metadata table: hash -> string
	TableID2Str Table = iota

	// Collection names -> empty value
	TableCollections

	// Collection names -> entity high-water mark
	TableEntities

	// Statement indexes, keyed by collection then 4 terms (6 permutations)
	TableSPOC
	TablePOSC
	TableOSPC
	TableCSPO
	TableCPOS
	TableCOSP

	// Rule indexes, keyed by collection then 3 terms
	TableRuleSPO
	TableRulePOS
	TableRuleOSP

	// Total number of tables
	TableCount
)

// StatementTables lists every statement index
var StatementTables = []Table{TableSPOC, TablePOSC, TableOSPC, TableCSPO, TableCPOS, TableCOSP}

// RuleTables lists every rule index
var RuleTables = []Table{TableRuleSPO, TableRulePOS, TableRuleOSP}

func (t Table) String() string {
	switch t {
	case TableID2Str:
		return "id2str"
	case TableCollections:
		return "collections"
	case TableEntities:
		return "entities"
	case TableSPOC:
		return "spoc"
	case TablePOSC:
		return "posc"
	case TableOSPC:
		return "ospc"
	case TableCSPO:
		return "cspo"
	case TableCPOS:
		return "cpos"
	case TableCOSP:
		return "cosp"
	case TableRuleSPO:
		return "rule_spo"
	case TableRulePOS:
		return "rule_pos"
	case TableRuleOSP:
		return "rule_osp"
	default:
		return "unknown"
	}
}

// KeyOrder returns the statement positions (0=S, 1=P, 2=O, 3=C) in the
// order an index lays them out. Rule indexes have no context position.
func (t Table) KeyOrder() []int {
	switch t {
	case TableSPOC:
		return []int{0, 1, 2, 3}
	case TablePOSC:
		return []int{1, 2, 0, 3}
	case TableOSPC:
		return []int{2, 0, 1, 3}
	case TableCSPO:
		return []int{3, 0, 1, 2}
	case TableCPOS:
		return []int{3, 1, 2, 0}
	case TableCOSP:
		return []int{3, 2, 0, 1}
	case TableRuleSPO:
		return []int{0, 1, 2}
	case TableRulePOS:
		return []int{1, 2, 0}
	case TableRuleOSP:
		return []int{2, 0, 1}
	default:
		return nil
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key
func PrefixKey(table Table, key []byte) []byte {
	prefix := TablePrefix(table)
	result := make([]byte, len(prefix)+len(key))
	copy(result, prefix)
	copy(result[len(prefix):], key)
	return result
}
