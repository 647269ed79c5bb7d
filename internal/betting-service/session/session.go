// Package session hospeda listas de apostas montadas, uma por sessão de usuário.
// Cada sessão tem seu próprio canal; o núcleo é sempre chamado sob o mutex da sessão.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betting-list/internal/betting/channel"
	"github.com/radieske/betting-list/internal/betting/item"
	"github.com/radieske/betting-list/internal/betting/list"
	"github.com/radieske/betting-list/internal/betting/view"
	"github.com/radieske/betting-list/pkg/contracts/events"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrItemNotFound    = errors.New("item not found")
)

// Catalog fornece os itens de uma nova lista
type Catalog interface {
	Load(ctx context.Context) ([]item.Spec, error)
}

// Notifier recebe as atualizações de cada sessão (ex.: hub WebSocket)
type Notifier interface {
	Broadcast(sessionID string, msg any)
}

// Attacher é inscrito no canal de cada sessão aberta; o retorno desfaz a inscrição
type Attacher interface {
	Attach(ch channel.Channel) (detach func())
}

// SlipView é a projeção do cupom da sessão
type SlipView struct {
	Picks     []list.Pick     `json:"picks"`
	TotalOdds decimal.Decimal `json:"totalOdds"`
}

// Snapshot é o estado visível de uma sessão
type Snapshot struct {
	ID   string    `json:"id"`
	View view.Node `json:"view"`
	Slip SlipView  `json:"slip"`
}

// Result é o retorno de uma ativação
type Result struct {
	View    view.Node             `json:"view"`
	Patches []view.Patch          `json:"patches"`
	Event   events.ChoiceSelected `json:"event"`
}

// Update é a mensagem enviada ao Notifier após cada mudança de estado
type Update struct {
	Type      string           `json:"type"` // "patch"
	SessionID string           `json:"sessionId"`
	Patches   []view.Patch     `json:"patches"`
	Event     *events.Envelope `json:"event,omitempty"`
}

type session struct {
	id string

	mu     sync.Mutex
	bus    *channel.Bus
	list   *list.List
	slip   *list.Slip
	view   view.Node
	last   *events.ChoiceSelected
	own    channel.Token
	detach []func()
}

type Manager struct {
	log       *zap.Logger
	catalog   Catalog
	notifier  Notifier
	attachers []Attacher
	heading   string
	newID     func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }
func WithAttacher(a Attacher) Option { return func(m *Manager) { m.attachers = append(m.attachers, a) } }
func WithHeading(h string) Option    { return func(m *Manager) { m.heading = h } }

func NewManager(log *zap.Logger, cat Catalog, opts ...Option) *Manager {
	m := &Manager{
		log:      log,
		catalog:  cat,
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Open carrega o catálogo, monta uma nova lista e registra a sessão
func (m *Manager) Open(ctx context.Context) (Snapshot, error) {
	specs, err := m.catalog.Load(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load catalog: %w", err)
	}

	s := &session{id: m.newID(), slip: list.NewSlip()}
	s.bus = channel.NewBus(m.log.With(zap.String("session_id", s.id)))

	items := make([]*item.Item, 0, len(specs))
	for _, sp := range specs {
		items = append(items, item.New(sp))
	}
	s.list = list.New(s.id, items, list.WithPolicy(s.slip), list.WithHeading(m.heading))

	// registra o último SELECT_BET_CHOICE para devolver no Activate
	s.own = s.bus.Subscribe(events.KindSelectBetChoice, func(e events.Event) {
		ev := e.(events.ChoiceSelected)
		s.last = &ev
	})
	for _, a := range m.attachers {
		s.detach = append(s.detach, a.Attach(s.bus))
	}

	s.list.Mount(s.bus)
	s.view = s.list.Render()

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.log.Info("session opened", zap.String("session_id", s.id), zap.Int("items", len(items)))
	return s.snapshot(), nil
}

func (m *Manager) get(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// View retorna o estado atual da sessão
func (m *Manager) View(id string) (Snapshot, error) {
	s, err := m.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Slip retorna o cupom agregado da sessão
func (m *Manager) Slip(id string) (SlipView, error) {
	s, err := m.get(id)
	if err != nil {
		return SlipView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slipView(), nil
}

// Activate ativa a odd choice do item itemID e devolve a nova visão com os patches
func (m *Manager) Activate(id, itemID string, choice int) (Result, error) {
	s, err := m.get(id)
	if err != nil {
		return Result{}, err
	}
	res, upd, err := m.activate(s, itemID, choice)
	if err != nil {
		return Result{}, err
	}
	m.broadcast(upd)
	return res, nil
}

// activate aplica a seleção sob o mutex da sessão; o envio ao Notifier fica fora dele
func (m *Manager) activate(s *session, itemID string, choice int) (Result, *Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.list.Item(itemID)
	if !ok {
		return Result{}, nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	s.last = nil
	if err := it.Activate(choice); err != nil {
		return Result{}, nil, err
	}

	patches := s.rerender()
	res := Result{View: s.view.Clone(), Patches: patches}
	if s.last != nil {
		res.Event = *s.last
	}
	return res, m.update(s, patches, s.last), nil
}

// AddItem inclui na lista da sessão o item itemID do catálogo
func (m *Manager) AddItem(ctx context.Context, id, itemID string) (Result, error) {
	s, err := m.get(id)
	if err != nil {
		return Result{}, err
	}
	specs, err := m.catalog.Load(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load catalog: %w", err)
	}
	idx := slices.IndexFunc(specs, func(sp item.Spec) bool { return sp.ID == itemID })
	if idx < 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	s.mu.Lock()
	if err := s.list.Add(item.New(specs[idx])); err != nil {
		s.mu.Unlock()
		return Result{}, err
	}
	res, upd := m.changed(s)
	s.mu.Unlock()

	m.broadcast(upd)
	m.log.Debug("item added", zap.String("session_id", id), zap.String("item_id", itemID))
	return res, nil
}

// RemoveItem desmonta e retira o item da lista da sessão
func (m *Manager) RemoveItem(id, itemID string) (Result, error) {
	s, err := m.get(id)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	if !s.list.Remove(itemID) {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	res, upd := m.changed(s)
	s.mu.Unlock()

	m.broadcast(upd)
	m.log.Debug("item removed", zap.String("session_id", id), zap.String("item_id", itemID))
	return res, nil
}

// changed re-renderiza após mudança de composição; chamado sob s.mu
func (m *Manager) changed(s *session) (Result, *Update) {
	patches := s.rerender()
	return Result{View: s.view.Clone(), Patches: patches}, m.update(s, patches, nil)
}

// ApplyOdds re-renderiza o item spec.ID em todas as sessões; retorna quantas mudaram
func (m *Manager) ApplyOdds(spec item.Spec) int {
	m.mu.RLock()
	all := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.RUnlock()

	var updates []*Update
	for _, s := range all {
		s.mu.Lock()
		if it, ok := s.list.Item(spec.ID); ok {
			it.Replace(spec.Title, spec.Choices)
			if patches := s.rerender(); len(patches) > 0 {
				updates = append(updates, m.update(s, patches, nil))
			}
		}
		s.mu.Unlock()
	}
	for _, u := range updates {
		m.broadcast(u)
	}
	return len(updates)
}

// Close desmonta a lista e descarta a sessão (a seleção não é persistida)
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list.Unmount()
	s.bus.Unsubscribe(s.own)
	for _, d := range s.detach {
		d()
	}
	s.detach = nil
	m.log.Info("session closed", zap.String("session_id", id))
	return nil
}

// Count retorna o número de sessões abertas
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// update monta a mensagem do Notifier; nil quando não há Notifier
func (m *Manager) update(s *session, patches []view.Patch, ev *events.ChoiceSelected) *Update {
	if m.notifier == nil {
		return nil
	}
	upd := &Update{Type: "patch", SessionID: s.id, Patches: patches}
	if ev != nil {
		env, err := events.Wrap(*ev)
		if err != nil {
			m.log.Warn("wrap event failed", zap.Error(err))
		} else {
			upd.Event = &env
		}
	}
	return upd
}

// broadcast é chamado sem nenhum mutex de sessão: um cliente lento não trava a sessão
func (m *Manager) broadcast(upd *Update) {
	if upd == nil {
		return
	}
	m.notifier.Broadcast(upd.SessionID, *upd)
}

// rerender projeta o estado atual e calcula os patches contra a visão anterior
func (s *session) rerender() []view.Patch {
	next := s.list.Render()
	patches := view.Diff(s.view, next)
	s.view = next
	return patches
}

func (s *session) snapshot() Snapshot {
	return Snapshot{ID: s.id, View: s.view.Clone(), Slip: s.slipView()}
}

func (s *session) slipView() SlipView {
	return SlipView{Picks: s.slip.Picks(), TotalOdds: s.slip.TotalOdds()}
}
