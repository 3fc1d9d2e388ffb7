package notify

import "errors"

var ErrNoRecipient = errors.New("notify: recipient address is empty")
