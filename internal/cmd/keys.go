// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"log"

	"github.com/eiannone/keyboard"
)

type keyAction int

const (
	keyIgnore keyAction = iota
	keySkip
	keyInterrupt
)

func actionFor(event keyboard.KeyEvent) keyAction {
	if event.Err != nil {
		return keyIgnore
	}

	switch event.Key {
	case keyboard.KeyCtrlC, keyboard.KeyEsc:
		return keyInterrupt
	case keyboard.KeyEnter, keyboard.KeySpace:
		return keySkip
	default:
		return keyIgnore
	}
}

// listenForKeys reads single key presses from the terminal. Enter or Space is sent on the returned
// channel; Esc or Ctrl+C calls cancel. The returned function restores the terminal.
func listenForKeys(cancel context.CancelFunc) (<-chan struct{}, func()) {
	events, err := keyboard.GetKeys(8)
	if err != nil {
		log.Printf("key input unavailable: %v", err)
		return nil, func() {}
	}

	skip := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				switch actionFor(event) {
				case keyInterrupt:
					cancel()
				case keySkip:
					select {
					case skip <- struct{}{}:
					default:
					}
				}
			}
		}
	}()

	return skip, func() {
		close(done)
		if err := keyboard.Close(); err != nil {
			log.Printf("failed to restore terminal: %v", err)
		}
	}
}
