package state_test

import (
	"portfolio/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("StateMachine", func() {
	var (
		stateMachine *state.StateMachine
	)

	BeforeEach(func() {
		//         PENDING      DOING         DONE
		// PENDING   -            V (begin)   V (close)
		// DOING     V (cancel)   -           V (finish)
		// DONE      V (reopen)   X           -
		stateMachine = state.NewStateMachine(
			[]state.State{{Name: "PENDING"}, {Name: "DOING"}, {Name: "DONE"}},
			[]state.Transition{
				{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
				{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
				{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
				{Name: "reopen", From: state.State{Name: "DONE"}, To: state.State{Name: "PENDING"}},
			})
	})

	Describe("NewStateMachine", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should create new State Machine successfully", func() {
				Expect(stateMachine).NotTo(BeZero())
				Expect(stateMachine.States).Should(Equal([]state.State{{Name: "PENDING"}, {Name: "DOING"}, {Name: "DONE"}}))
				Expect(len(stateMachine.Transitions)).Should(Equal(5))
			})
		})
	})

	Describe("AvailableTransitions", func() {
		Context("With given PENDING-DOING-DONE states and transitions", func() {
			It("should return availableTransitions as expected", func() {
				Ω(stateMachine.AvailableTransitions("PENDING", "")).Should(Equal([]state.Transition{
					{Name: "begin", From: state.State{Name: "PENDING"}, To: state.State{Name: "DOING"}},
					{Name: "close", From: state.State{Name: "PENDING"}, To: state.State{Name: "DONE"}},
				}))

				Ω(stateMachine.AvailableTransitions("DOING", "DONE")).Should(Equal([]state.Transition{
					{Name: "finish", From: state.State{Name: "DOING"}, To: state.State{Name: "DONE"}},
				}))

				Ω(stateMachine.AvailableTransitions("", "PENDING")).Should(Equal([]state.Transition{
					{Name: "cancel", From: state.State{Name: "DOING"}, To: state.State{Name: "PENDING"}},
					{Name: "reopen", From: state.State{Name: "DONE"}, To: state.State{Name: "PENDING"}},
				}))

				Ω(len(stateMachine.AvailableTransitions("UNKNOWN", ""))).Should(Equal(0))
			})
		})
	})

	Describe("FindState", func() {
		It("should find declared states only", func() {
			s, found := stateMachine.FindState("DOING")
			Expect(found).To(BeTrue())
			Expect(s).To(Equal(state.State{Name: "DOING"}))

			_, found = stateMachine.FindState("UNKNOWN")
			Expect(found).To(BeFalse())
		})
	})
})
