package service

import (
	"github.com/plightick/kursovaya/internal/logger"
	"github.com/plightick/kursovaya/internal/repository"
)

// adjustRecipientBalance resolves a transfer destination and applies a signed
// balance delta to the owning account, clamped at zero.
//
// Resolution scans stored users in directory-listing order and stops at the
// first match: an account whose number equals the destination, else a card
// whose number equals the destination resolved to that card's linked account
// within the same user. Unreadable users and failed saves are skipped so the
// scan keeps going; no match leaves every balance untouched.
//
// Returns the owning username and whether any balance changed.
func adjustRecipientBalance(users repository.Users, log *logger.Logger, destination string, deltaCents int64) (string, bool) {
	names, err := users.ListUsernames()
	if err != nil {
		if log != nil {
			log.Warnw("recipient resolution cannot list users", "err", err)
		}
		return "", false
	}

	for _, name := range names {
		u, err := users.Load(name)
		if err != nil {
			if log != nil {
				log.Warnw("recipient resolution skipping user", "username", name, "err", err)
			}
			continue
		}

		target := u.FindAccount(destination)
		if target == nil {
			if card := u.FindCard(destination); card != nil {
				target = u.FindAccount(card.LinkedAccount)
			}
		}
		if target == nil {
			continue
		}

		newBalance := target.BalanceCents + deltaCents
		if newBalance < 0 {
			newBalance = 0
		}
		target.BalanceCents = newBalance

		if err := users.Save(u); err != nil {
			if log != nil {
				log.Warnw("recipient resolution save failed", "username", name, "err", err)
			}
			continue
		}
		return u.Username, true
	}
	return "", false
}
