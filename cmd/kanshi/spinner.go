package main

import "github.com/mmcdole/kanshi/internal/tui/styles"

func spinnerFrame(i int) string {
	return styles.SpinnerFrames[i%len(styles.SpinnerFrames)]
}
