package game

import (
	"fmt"
	"time"

	"wordclash/internal/models"
)

type choiceQuestion struct {
	id       string
	word     models.Word
	position int
	state    ItemState
	resolved bool
	// tainted questions still have to be answered but score nothing
	tainted  bool
	mistakes int
}

type choiceOption struct {
	id    string
	word  models.Word
	state ItemState
}

// ChoiceRound is the "pick the right translation" engine
type ChoiceRound struct {
	h          host
	cfg        models.GameConfig
	dictionary []models.Word
	shuffle    ShuffleFunc

	gen       int
	questions []*choiceQuestion
	options   []*choiceOption
	selQ      *choiceQuestion
	selO      *choiceOption
	feedback  bool
	advancing bool
	startedAt time.Time
}

func newChoiceRound(h host, cfg models.GameConfig, dictionary []models.Word, shuffle ShuffleFunc) *ChoiceRound {
	return &ChoiceRound{h: h, cfg: cfg, dictionary: dictionary, shuffle: shuffle}
}

func (c *ChoiceRound) begin(gen int, batch []models.Word, offset int) {
	c.gen = gen
	c.selQ, c.selO = nil, nil
	c.feedback, c.advancing = false, false
	c.startedAt = c.h.now()

	c.questions = make([]*choiceQuestion, len(batch))
	for i, w := range batch {
		c.questions[i] = &choiceQuestion{
			id:       fmt.Sprintf("r%d-q%d", gen, i),
			word:     w,
			position: offset + i,
			state:    ItemDefault,
		}
	}

	answers := append([]models.Word(nil), batch...)
	answers = append(answers, pickDistractors(batch, c.dictionary, c.cfg.OptionsCount-len(batch), c.shuffle)...)
	c.shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})
	c.options = make([]*choiceOption, len(answers))
	for i, w := range answers {
		c.options[i] = &choiceOption{id: fmt.Sprintf("r%d-o%d", gen, i), word: w, state: ItemDefault}
	}

	c.autoSelect()
}

func (c *ChoiceRound) act(a Action) error {
	switch a.Kind {
	case ActionQuestion:
		q := c.findQuestion(a.ItemID)
		if q == nil {
			return fmt.Errorf("%w: question %q", ErrUnknownItem, a.ItemID)
		}
		if c.feedback || c.advancing || q.resolved {
			return nil
		}
		if c.selQ != nil {
			c.selQ.state = ItemDefault
		}
		c.selQ = q
		q.state = ItemSelected

	case ActionOption:
		o := c.findOption(a.ItemID)
		if o == nil {
			return fmt.Errorf("%w: option %q", ErrUnknownItem, a.ItemID)
		}
		if c.feedback || c.advancing || o.state == ItemMatched {
			return nil
		}
		if c.selO == o {
			o.state = ItemDefault
			c.selO = nil
			return nil
		}
		if c.selO != nil {
			c.selO.state = ItemDefault
		}
		c.selO = o
		o.state = ItemSelected

	default:
		return fmt.Errorf("%w: action kind %q", ErrUnknownItem, a.Kind)
	}

	if c.selQ != nil && c.selO != nil {
		c.evaluate(c.selQ, c.selO)
	}
	return nil
}

func (c *ChoiceRound) evaluate(q *choiceQuestion, o *choiceOption) {
	c.selQ, c.selO = nil, nil

	if o.word.ID != q.word.ID {
		q.tainted = true
		q.mistakes++
		q.state = ItemError
		o.state = ItemError
		for _, other := range c.options {
			if other.state != ItemMatched && other.word.ID == q.word.ID {
				other.state = ItemSuccessHint
				break
			}
		}
		c.h.addMistake()
		c.feedback = true
		c.h.schedule(evFeedbackDone)
		return
	}

	q.resolved = true
	q.state = ItemMatched
	o.state = ItemMatched
	if !q.tainted {
		c.h.addScore()
	}
	c.h.correctAnswer()

	selected := o.word.ID
	c.h.record(models.QuestionLog{
		Position:         q.position,
		WordID:           q.word.ID,
		OptionIDs:        c.optionIDs(),
		CorrectOptionID:  q.word.ID,
		SelectedOptionID: &selected,
		IsCorrect:        !q.tainted,
		Mistakes:         q.mistakes,
		TimeTakenMs:      elapsedMs(c.startedAt, c.h.now()),
	})

	if c.remaining() == 0 {
		c.advancing = true
		c.h.schedule(evAdvance)
		return
	}
	c.autoSelect()
}

func (c *ChoiceRound) remaining() int {
	n := 0
	for _, q := range c.questions {
		if !q.resolved {
			n++
		}
	}
	return n
}

// autoSelect picks the question when there is no choice left to make
func (c *ChoiceRound) autoSelect() {
	if c.selQ != nil || c.feedback || c.advancing || c.remaining() != 1 {
		return
	}
	for _, q := range c.questions {
		if !q.resolved {
			q.state = ItemSelected
			c.selQ = q
			return
		}
	}
}

func (c *ChoiceRound) clearFeedback() {
	if !c.feedback {
		return
	}
	c.feedback = false
	for _, q := range c.questions {
		if q.state == ItemError {
			q.state = ItemDefault
		}
	}
	for _, o := range c.options {
		if o.state == ItemError || o.state == ItemSuccessHint {
			o.state = ItemDefault
		}
	}
	c.autoSelect()
}

func (c *ChoiceRound) phase() Phase {
	switch {
	case c.advancing:
		return PhaseAdvancing
	case c.feedback:
		return PhaseFeedback
	case c.selQ != nil:
		return PhaseQuestionSelected
	}
	return PhaseIdle
}

func (c *ChoiceRound) view(s *Snapshot) {
	s.Questions = make([]ItemView, len(c.questions))
	for i, q := range c.questions {
		s.Questions[i] = ItemView{ID: q.id, Text: q.word.SourceText, State: q.state}
	}
	s.Options = make([]ItemView, len(c.options))
	for i, o := range c.options {
		s.Options[i] = ItemView{ID: o.id, Text: o.word.TargetText, State: o.state}
	}
	if c.selQ != nil {
		s.SelectedQuestion = c.selQ.id
	}
	if c.selO != nil {
		s.SelectedOption = c.selO.id
	}
}

func (c *ChoiceRound) unresolved() []models.QuestionLog {
	var out []models.QuestionLog
	for _, q := range c.questions {
		if q.resolved {
			continue
		}
		out = append(out, models.QuestionLog{
			Position:        q.position,
			WordID:          q.word.ID,
			OptionIDs:       c.optionIDs(),
			CorrectOptionID: q.word.ID,
			Mistakes:        q.mistakes,
			TimeTakenMs:     elapsedMs(c.startedAt, c.h.now()),
		})
	}
	return out
}

func (c *ChoiceRound) optionIDs() []int64 {
	ids := make([]int64, len(c.options))
	for i, o := range c.options {
		ids[i] = o.word.ID
	}
	return ids
}

func (c *ChoiceRound) findQuestion(id string) *choiceQuestion {
	for _, q := range c.questions {
		if q.id == id {
			return q
		}
	}
	return nil
}

func (c *ChoiceRound) findOption(id string) *choiceOption {
	for _, o := range c.options {
		if o.id == id {
			return o
		}
	}
	return nil
}
