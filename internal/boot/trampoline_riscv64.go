package boot

// afterTrampolineAddr returns afterTrampoline's address, the same
// getter-stub pattern internal/trap uses for TrapVector: the trampoline
// jumps to a raw address, not through a Go call, so the function needs
// its address taken at the assembly level.
func afterTrampolineAddr() uint64
