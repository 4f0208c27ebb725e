package chat

import "tickerchat/model"

// project sets the auxiliary link on the step with targetKey and clears it
// from every other step of the turn, maintaining the invariant that at most
// one step per turn carries a non-empty link at any moment.
func project(turn *model.Turn, targetKey, link string) {
	for i := range turn.Steps {
		if turn.Steps[i].Key == targetKey {
			turn.Steps[i].Link = link
		} else {
			turn.Steps[i].Link = ""
		}
	}
}
