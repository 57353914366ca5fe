package domain

// MovementType classifies a history entry.
type MovementType string

const (
	MovementAdd      MovementType = "ADD"
	MovementDispense MovementType = "DISPENSE"
	MovementDelete   MovementType = "DELETE"
)

// SystemPerson is recorded as the actor of additions and deletions.
const SystemPerson = "system"

// HistoryEntry is an immutable record of a single stock movement. Name and
// batch are copied at event time so entries outlive the medicine row.
type HistoryEntry struct {
	ID           int64        `db:"id" json:"id"`
	Type         MovementType `db:"type" json:"type"`
	MedicineName string       `db:"medicine_name" json:"medicine_name"`
	Batch        string       `db:"batch" json:"batch"`
	Quantity     int64        `db:"quantity" json:"quantity"`
	Person       string       `db:"person" json:"person"`
	Timestamp    Timestamp    `db:"timestamp" json:"timestamp"`
}
