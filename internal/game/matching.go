package game

import (
	"fmt"
	"strings"
	"time"

	"wordclash/internal/models"
)

type matchItem struct {
	id       string
	word     models.Word
	text     string
	matchKey string
	state    ItemState
	// left items only
	position int
	mistakes int
}

// MatchingRound is the "find the pairs" engine. Left items are the batch
// questions, right items their answers mixed with distractors.
type MatchingRound struct {
	h          host
	cfg        models.GameConfig
	dictionary []models.Word
	shuffle    ShuffleFunc

	gen       int
	left      []*matchItem
	right     []*matchItem
	matched   map[string]bool
	selLeft   *matchItem
	selRight  *matchItem
	feedback  bool
	advancing bool
	startedAt time.Time
}

func newMatchingRound(h host, cfg models.GameConfig, dictionary []models.Word, shuffle ShuffleFunc) *MatchingRound {
	return &MatchingRound{h: h, cfg: cfg, dictionary: dictionary, shuffle: shuffle}
}

func (m *MatchingRound) begin(gen int, batch []models.Word, offset int) {
	m.gen = gen
	m.matched = make(map[string]bool, len(batch))
	m.selLeft, m.selRight = nil, nil
	m.feedback, m.advancing = false, false
	m.startedAt = m.h.now()

	m.left = make([]*matchItem, len(batch))
	answers := make([]models.Word, 0, m.cfg.OptionsCount)
	for i, w := range batch {
		m.left[i] = &matchItem{
			word:     w,
			text:     w.SourceText,
			matchKey: w.AnswerKey(),
			state:    ItemDefault,
			position: offset + i,
		}
		answers = append(answers, w)
	}
	answers = append(answers, pickDistractors(batch, m.dictionary, m.cfg.OptionsCount-len(batch), m.shuffle)...)

	m.right = make([]*matchItem, len(answers))
	for i, w := range answers {
		m.right[i] = &matchItem{word: w, text: w.TargetText, matchKey: w.AnswerKey(), state: ItemDefault}
	}

	m.shuffleItems(m.left)
	m.shuffleItems(m.right)
	for i, it := range m.left {
		it.id = fmt.Sprintf("r%d-l%d", gen, i)
	}
	for i, it := range m.right {
		it.id = fmt.Sprintf("r%d-r%d", gen, i)
	}

	m.autoSelect()
}

func (m *MatchingRound) shuffleItems(items []*matchItem) {
	m.shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func (m *MatchingRound) act(a Action) error {
	var item *matchItem
	switch a.Kind {
	case ActionQuestion:
		item = findItem(m.left, a.ItemID)
	case ActionOption:
		item = findItem(m.right, a.ItemID)
	}
	if item == nil {
		return fmt.Errorf("%w: %s %q", ErrUnknownItem, a.Kind, a.ItemID)
	}
	if m.feedback || m.advancing || item.state == ItemMatched {
		return nil
	}

	if a.Kind == ActionQuestion {
		if m.selLeft != nil {
			m.selLeft.state = ItemDefault
		}
		m.selLeft = item
		item.state = ItemSelected
	} else {
		if m.selRight == item {
			item.state = ItemDefault
			m.selRight = nil
			return nil
		}
		if m.selRight != nil {
			m.selRight.state = ItemDefault
		}
		m.selRight = item
		item.state = ItemSelected
	}

	if m.selLeft != nil && m.selRight != nil {
		m.evaluate(m.selLeft, m.selRight)
	}
	m.autoSelect()
	return nil
}

func (m *MatchingRound) evaluate(l, r *matchItem) {
	m.selLeft, m.selRight = nil, nil

	if l.matchKey != r.matchKey {
		l.state = ItemError
		r.state = ItemError
		l.mistakes++
		for _, it := range m.right {
			if it != r && it.state != ItemMatched && it.matchKey == l.matchKey {
				it.state = ItemSuccessHint
				break
			}
		}
		m.h.addMistake()
		m.feedback = true
		m.h.schedule(evFeedbackDone)
		return
	}

	l.state = ItemMatched
	r.state = ItemMatched
	m.matched[l.id] = true
	m.h.addScore()
	m.h.correctAnswer()

	selected := r.word.ID
	m.h.record(models.QuestionLog{
		Position:         l.position,
		WordID:           l.word.ID,
		OptionIDs:        m.optionIDs(),
		CorrectOptionID:  l.word.ID,
		SelectedOptionID: &selected,
		IsCorrect:        true,
		Mistakes:         l.mistakes,
		TimeTakenMs:      elapsedMs(m.startedAt, m.h.now()),
	})

	if m.complete() {
		m.advancing = true
		m.h.schedule(evAdvance)
	}
}

// complete reports whether every left item of this batch is matched. Only
// ids minted for the current batch count.
func (m *MatchingRound) complete() bool {
	if len(m.matched) != len(m.left) {
		return false
	}
	prefix := fmt.Sprintf("r%d-", m.gen)
	for id := range m.matched {
		if !strings.HasPrefix(id, prefix) {
			return false
		}
	}
	return true
}

// autoSelect keeps a left item selected whenever the player can act
func (m *MatchingRound) autoSelect() {
	if m.selLeft != nil || m.feedback || m.advancing || m.complete() {
		return
	}
	for _, it := range m.left {
		if it.state != ItemMatched {
			it.state = ItemSelected
			m.selLeft = it
			return
		}
	}
}

func (m *MatchingRound) clearFeedback() {
	if !m.feedback {
		return
	}
	m.feedback = false
	for _, items := range [][]*matchItem{m.left, m.right} {
		for _, it := range items {
			if it.state == ItemError || it.state == ItemSuccessHint {
				it.state = ItemDefault
			}
		}
	}
	m.autoSelect()
}

func (m *MatchingRound) phase() Phase {
	switch {
	case m.advancing:
		return PhaseAdvancing
	case m.feedback:
		return PhaseFeedback
	case m.selLeft != nil:
		return PhaseQuestionSelected
	}
	return PhaseIdle
}

func (m *MatchingRound) view(s *Snapshot) {
	s.Questions = itemViews(m.left)
	s.Options = itemViews(m.right)
	if m.selLeft != nil {
		s.SelectedQuestion = m.selLeft.id
	}
	if m.selRight != nil {
		s.SelectedOption = m.selRight.id
	}
}

func (m *MatchingRound) unresolved() []models.QuestionLog {
	var out []models.QuestionLog
	for _, it := range m.left {
		if it.state == ItemMatched {
			continue
		}
		out = append(out, models.QuestionLog{
			Position:        it.position,
			WordID:          it.word.ID,
			OptionIDs:       m.optionIDs(),
			CorrectOptionID: it.word.ID,
			Mistakes:        it.mistakes,
			TimeTakenMs:     elapsedMs(m.startedAt, m.h.now()),
		})
	}
	return out
}

func (m *MatchingRound) optionIDs() []int64 {
	ids := make([]int64, len(m.right))
	for i, it := range m.right {
		ids[i] = it.word.ID
	}
	return ids
}

func findItem(items []*matchItem, id string) *matchItem {
	for _, it := range items {
		if it.id == id {
			return it
		}
	}
	return nil
}

func itemViews(items []*matchItem) []ItemView {
	out := make([]ItemView, len(items))
	for i, it := range items {
		out[i] = ItemView{ID: it.id, Text: it.text, State: it.state}
	}
	return out
}
