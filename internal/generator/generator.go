package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/mailbox"
)

// Expectation is the obligation a generated message encodes.
type Expectation struct {
	MessageID    string          `json:"message_id"`
	Vendor       string          `json:"vendor"`
	Amount       decimal.Decimal `json:"amount"`
	Installments int             `json:"installments"`
	DueDate      string          `json:"due_date"`
}

// Dataset is a generated mailbox plus the obligations hidden in it.
type Dataset struct {
	Mailbox  mailbox.Mailbox `json:"mailbox"`
	Expected []Expectation   `json:"expected"`
}

// Generator produces synthetic inboxes mixing BNPL notices with noise.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments fragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumMessages <= 0 {
		cfg.NumMessages = defaults.NumMessages
	}
	if cfg.BNPLShare <= 0 {
		cfg.BNPLShare = defaults.BNPLShare
	}
	if cfg.SpamChance < 0 {
		cfg.SpamChance = 0
	}
	if cfg.ReminderChance < 0 {
		cfg.ReminderChance = 0
	}
	if cfg.UserEmail == "" {
		cfg.UserEmail = defaults.UserEmail
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultFragments(),
	}
}

// Generate synthesises the mailbox. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	ds := Dataset{
		Mailbox: mailbox.Mailbox{
			UserEmail: g.cfg.UserEmail,
			Messages:  make([]domain.RawMessage, 0, g.cfg.NumMessages),
		},
	}

	for i := 0; i < g.cfg.NumMessages; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		id := fmt.Sprintf("gen-%06d", i+1)

		if g.rand.Float64() >= g.cfg.BNPLShare {
			ds.Mailbox.Messages = append(ds.Mailbox.Messages, g.noiseMessage(id))
			continue
		}

		msg, exp := g.obligationMessage(id)
		if g.rand.Float64() < g.cfg.SpamChance {
			msg.Body += " This message was reported as spam."
			ds.Mailbox.Messages = append(ds.Mailbox.Messages, msg)
			continue
		}
		ds.Mailbox.Messages = append(ds.Mailbox.Messages, msg)
		ds.Expected = append(ds.Expected, exp)
	}
	return ds, nil
}

func (g *Generator) obligationMessage(id string) (domain.RawMessage, Expectation) {
	v := g.fragments.vendors[g.rand.Intn(len(g.fragments.vendors))]
	installments := g.fragments.installments[g.rand.Intn(len(g.fragments.installments))]
	due := g.cfg.Now.AddDate(0, 0, 1+g.rand.Intn(60)).Format(domain.DueDateLayout)
	amount, text := g.randomAmount()

	var subject, body string
	switch g.rand.Intn(3) {
	case 0:
		subject = fmt.Sprintf("Your %s payment plan", v.name)
		body = fmt.Sprintf("Thanks for shopping! Order total: %s split into %d installments. Your first installment is due on %s.",
			text, installments, due)
	case 1:
		subject = fmt.Sprintf("%s EMI statement", v.name)
		body = fmt.Sprintf("Dear customer, your EMI plan for a purchase amount of %s has %d EMIs remaining. Next EMI due date %s.",
			text, installments, due)
	default:
		subject = fmt.Sprintf("Reminder: %s repayment", v.name)
		body = fmt.Sprintf("Pay in %d with %s. Total %s. Payable by %s.", installments, v.name, text, due)
	}

	msg := domain.RawMessage{
		ID:      id,
		Sender:  fmt.Sprintf("%s <noreply@%s>", v.name, v.domain),
		Subject: subject,
		Body:    body,
	}
	return msg, Expectation{
		MessageID:    id,
		Vendor:       v.name,
		Amount:       amount,
		Installments: installments,
		DueDate:      due,
	}
}

func (g *Generator) noiseMessage(id string) domain.RawMessage {
	if g.rand.Float64() < g.cfg.ReminderChance {
		v := g.fragments.vendors[g.rand.Intn(len(g.fragments.vendors))]
		return domain.RawMessage{
			ID:      id,
			Sender:  fmt.Sprintf("%s <alerts@%s>", v.name, v.domain),
			Subject: "Your EMI is coming up",
			Body:    "Open the app to review your upcoming instalments.",
		}
	}
	n := g.fragments.noise[g.rand.Intn(len(g.fragments.noise))]
	return domain.RawMessage{
		ID:      id,
		Sender:  fmt.Sprintf("%s <%s>", g.randomFullName(), g.randomEmail()),
		Subject: n.subject,
		Body:    fmt.Sprintf(n.body, 1+g.rand.Intn(9)),
	}
}

// randomAmount returns a value and its rendering with a random currency
// marker. Rupee amounts use Indian digit grouping.
func (g *Generator) randomAmount() (decimal.Decimal, string) {
	rupees := int64(500 + g.rand.Intn(199500))
	switch g.rand.Intn(4) {
	case 0:
		return decimal.NewFromInt(rupees), "₹" + groupIndian(rupees)
	case 1:
		return decimal.NewFromInt(rupees), "Rs " + groupIndian(rupees)
	case 2:
		return decimal.NewFromInt(rupees), "INR " + groupIndian(rupees)
	default:
		cents := int64(g.rand.Intn(100))
		amount := decimal.New(rupees*100+cents, -2)
		return amount, "$" + groupWestern(rupees) + fmt.Sprintf(".%02d", cents)
	}
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.fragments.first[g.rand.Intn(len(g.fragments.first))],
		g.fragments.last[g.rand.Intn(len(g.fragments.last))])
}

func (g *Generator) randomEmail() string {
	domain := g.fragments.domains[g.rand.Intn(len(g.fragments.domains))]
	return fmt.Sprintf("%s.%s@%s", strings.ToLower(g.fragments.first[g.rand.Intn(len(g.fragments.first))]),
		strings.ToLower(g.fragments.last[g.rand.Intn(len(g.fragments.last))]), domain)
}

// groupWestern renders n as 1,234,567.
func groupWestern(n int64) string {
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return strings.Join(append([]string{s}, parts...), ",")
}

// groupIndian renders n as 12,34,567.
func groupIndian(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}

type vendor struct {
	name   string
	domain string
}

type noiseTemplate struct {
	subject string
	body    string // one %d verb
}

type fragments struct {
	vendors      []vendor
	installments []int
	noise        []noiseTemplate
	first        []string
	last         []string
	domains      []string
}

func defaultFragments() fragments {
	return fragments{
		vendors: []vendor{
			{"Klarna", "klarna.com"},
			{"Afterpay", "afterpay.com"},
			{"Clearpay", "clearpay.co.uk"},
			{"Sezzle", "sezzle.com"},
			{"Simpl", "getsimpl.com"},
			{"LazyPay", "lazypay.in"},
			{"ZestMoney", "zestmoney.in"},
			{"Amazon Pay Later", "amazon.in"},
		},
		installments: []int{3, 4, 6, 9, 12, 18, 24},
		noise: []noiseTemplate{
			{"Your order has shipped", "Order #45%d is on its way and should arrive soon."},
			{"Team lunch on Friday", "Let's meet at %d pm near the office."},
			{"Weekly reading list", "Here are %d articles we think you will enjoy."},
			{"Password changed", "Your password was changed %d minutes ago. Ignore this if it was you."},
		},
		first:   []string{"Asha", "Rahul", "Priya", "Vikram", "Neha", "Arjun", "Sara", "Kabir", "Meera", "Dev"},
		last:    []string{"Rao", "Sharma", "Iyer", "Mehta", "Khan", "Das", "Nair", "Gupta"},
		domains: []string{"example.com", "mail.example.org", "inbox.example.net"},
	}
}
