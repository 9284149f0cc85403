package directory

import (
	"context"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"salonbook/models"
)

// NameStore keeps display names of clients seen through the identity collaborator.
type NameStore interface {
	Get(ctx context.Context, clientID string) (string, error)
	Set(ctx context.Context, clientID, name string) error
}

// Directory serves the static master directory and resolves client names.
type Directory struct {
	masters map[string]models.Master
	names   NameStore
	logger  *zap.Logger
}

func New(masters map[string]string, names NameStore, logger *zap.Logger) *Directory {
	if names == nil {
		names = NewMemoryNameStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Directory{
		masters: make(map[string]models.Master, len(masters)),
		names:   names,
		logger:  logger,
	}
	for id, name := range masters {
		d.masters[id] = models.Master{ID: id, Name: name}
	}
	return d
}

func (d *Directory) Master(masterID string) (models.Master, bool) {
	m, ok := d.masters[masterID]
	return m, ok
}

// Masters returns every master, numeric ids in numeric order.
func (d *Directory) Masters() []models.Master {
	out := make([]models.Master, 0, len(d.masters))
	for _, m := range d.masters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i].ID)
		b, errB := strconv.Atoi(out[j].ID)
		if errA == nil && errB == nil {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ClientName falls back to the client id when no name is known.
func (d *Directory) ClientName(ctx context.Context, clientID string) string {
	name, err := d.names.Get(ctx, clientID)
	if err != nil {
		d.logger.Warn("client name lookup failed", zap.String("client_id", clientID), zap.Error(err))
	}
	if name == "" {
		return clientID
	}
	return name
}

// Remember records the caller's display name for later history records.
func (d *Directory) Remember(ctx context.Context, caller models.Caller) {
	if caller.UserID == "" || caller.Name == "" {
		return
	}
	if err := d.names.Set(ctx, caller.UserID, caller.Name); err != nil {
		d.logger.Warn("client name not stored", zap.String("client_id", caller.UserID), zap.Error(err))
	}
}
