package events

const (
	TopicOrderCreated   = "order.created"
	TopicCatalogChanged = "catalog.changed"
)

// Partition key keeps all events for one aggregate in order.
func PartitionKey(id string) []byte { return []byte(id) }
