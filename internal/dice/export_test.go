package dice

func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRoller = nil
}
