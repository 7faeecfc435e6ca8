package gamescore

import (
	"fmt"

	"github.com/govm-net/gamescore/core"
)

// ErrorKind enumerates the failures of the contract
type ErrorKind int

const (
	KindAccountAlreadyRegistered ErrorKind = iota + 1
	KindAccountNotRegistered
	KindUserNotRegistered
	KindCharacterNotFound
	KindCharacterAlreadyExists
	KindInvalidChapterValidation
	KindChapterNotStarted
	KindInvalidCharacterName
	KindInvalidClassName
	KindExcessiveRankingSize
	KindOwnerOnly
)

var kindNames = map[ErrorKind]string{
	KindAccountAlreadyRegistered: "AccountAlreadyRegistered",
	KindAccountNotRegistered:     "AccountNotRegistered",
	KindUserNotRegistered:        "UserNotRegistered",
	KindCharacterNotFound:        "CharacterNotFound",
	KindCharacterAlreadyExists:   "CharacterAlreadyExists",
	KindInvalidChapterValidation: "InvalidChapterValidation",
	KindChapterNotStarted:        "ChapterNotStarted",
	KindInvalidCharacterName:     "InvalidCharacterName",
	KindInvalidClassName:         "InvalidClassName",
	KindExcessiveRankingSize:     "ExcessiveRankingSize",
	KindOwnerOnly:                "OwnerOnly",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is a contract failure. Subject carries the offending account or name.
// Attempted and Maximum are only set for KindExcessiveRankingSize.
type Error struct {
	Kind      ErrorKind
	Subject   string
	Attempted int
	Maximum   int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAccountAlreadyRegistered:
		return fmt.Sprintf("Username %s is already registered in the database.", e.Subject)
	case KindAccountNotRegistered:
		return fmt.Sprintf("Tried to update %s, but account is not registered. This a server error, not a user error. Please report it.", e.Subject)
	case KindUserNotRegistered:
		return fmt.Sprintf("User %s needs to create an account before using this service.", e.Subject)
	case KindCharacterNotFound:
		return fmt.Sprintf("Character with name %s not found in current account.", e.Subject)
	case KindCharacterAlreadyExists:
		return fmt.Sprintf("A character with name %s already exists in this account.", e.Subject)
	case KindInvalidChapterValidation:
		return "Failed to validate chapter report."
	case KindChapterNotStarted:
		return "Can't attempt to validate chapter without first starting the match."
	case KindInvalidCharacterName:
		return fmt.Sprintf("Character name starts with an invalid character (%s).", e.Subject)
	case KindInvalidClassName:
		return fmt.Sprintf("Invalid name (%s) for character class.", e.Subject)
	case KindExcessiveRankingSize:
		return fmt.Sprintf("Computing ranking is expensive. Can't be higher than %d. Attempted %d.", e.Maximum, e.Attempted)
	case KindOwnerOnly:
		return "Only owner may call this function."
	}
	return e.Kind.String()
}

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of subject.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrAccountAlreadyRegistered = &Error{Kind: KindAccountAlreadyRegistered}
	ErrAccountNotRegistered     = &Error{Kind: KindAccountNotRegistered}
	ErrUserNotRegistered        = &Error{Kind: KindUserNotRegistered}
	ErrCharacterNotFound        = &Error{Kind: KindCharacterNotFound}
	ErrCharacterAlreadyExists   = &Error{Kind: KindCharacterAlreadyExists}
	ErrInvalidChapterValidation = &Error{Kind: KindInvalidChapterValidation}
	ErrChapterNotStarted        = &Error{Kind: KindChapterNotStarted}
	ErrInvalidCharacterName     = &Error{Kind: KindInvalidCharacterName}
	ErrInvalidClassName         = &Error{Kind: KindInvalidClassName}
	ErrExcessiveRankingSize     = &Error{Kind: KindExcessiveRankingSize}
	ErrOwnerOnly                = &Error{Kind: KindOwnerOnly}
)

func errAccountAlreadyRegistered(account core.AccountID) error {
	return &Error{Kind: KindAccountAlreadyRegistered, Subject: account.String()}
}

func errAccountNotRegistered(account core.AccountID) error {
	return &Error{Kind: KindAccountNotRegistered, Subject: account.String()}
}

func errUserNotRegistered(account core.AccountID) error {
	return &Error{Kind: KindUserNotRegistered, Subject: account.String()}
}

func errCharacterNotFound(name string) error {
	return &Error{Kind: KindCharacterNotFound, Subject: name}
}

func errCharacterAlreadyExists(name string) error {
	return &Error{Kind: KindCharacterAlreadyExists, Subject: name}
}

func errInvalidCharacterName(name string) error {
	return &Error{Kind: KindInvalidCharacterName, Subject: name}
}

func errInvalidClassName(name string) error {
	return &Error{Kind: KindInvalidClassName, Subject: name}
}

func errExcessiveRankingSize(attempted, maximum int) error {
	return &Error{Kind: KindExcessiveRankingSize, Attempted: attempted, Maximum: maximum}
}

func errChapterNotStarted() error {
	return &Error{Kind: KindChapterNotStarted}
}

func errOwnerOnly() error {
	return &Error{Kind: KindOwnerOnly}
}
