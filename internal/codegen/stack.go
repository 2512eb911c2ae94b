package codegen

// push stores ACC to the top of the frame and grows the stack by one
// word. Every push must be matched by a pop or a direct
// "addiu $sp $sp 4" once the pushed value is no longer needed; callers
// are responsible for keeping Context.VarCount in step with pushes
// that represent persistent (let/case) bindings.
func (e *Emitter) push() {
	e.emit("\tsw\t$a0 0($sp)")
	e.emit("\taddiu\t$sp $sp -4")
}

func (e *Emitter) pushReg(reg string) {
	e.emit("\tsw\t%s 0($sp)", reg)
	e.emit("\taddiu\t$sp $sp -4")
}

func (e *Emitter) pop(reg string) {
	e.emit("\taddiu\t$sp $sp 4")
	e.emit("\tlw\t%s 0($sp)", reg)
}
