package nautilus

// #region request
// RequestKind tags the payload handed back to the DM.
type RequestKind string

const (
	KindInitial   RequestKind = "initial"
	KindIteration RequestKind = "iteration"
	KindStop      RequestKind = "stop"
)

// Request is a payload for the DM.
type Request interface {
	Kind() RequestKind
}

// #endregion request

// #region messages
const initialMessage = "Please specify the number of iterations as 'n_iterations' to be carried out.\n" +
	"Please specify as 'preference_method' whether to\n" +
	"1. Rank the objectives in increasing order according to the importance of improving their value.\n" +
	"2. Specify percentages reflecting how much you would like to improve each of the current objective values.\n" +
	"Depending on 'preference_method', give either the ranks or the percentages for each objective as 'preference_info'."

const iterationMessage = "To change the number of remaining iterations, give the number as 'n_iterations'.\n" +
	"To take a step back to the previous iteration point, set 'step_back' to true, otherwise false.\n" +
	"To step back and take a shorter step with the previous preference information, also set 'short_step' to true.\n" +
	"To keep the preference information of the previous iteration, set 'use_previous_preference' to true.\n" +
	"Otherwise give new 'preference_method' (1 = ranks, 2 = percentages) and 'preference_info'.\n" +
	"To end the navigation at the current solution, set 'stop' to true."

const stopMessage = "Final solution found."

// #endregion messages

// #region payloads
// InitialRequest asks for the iteration count and the first preferences.
type InitialRequest struct {
	Message        string    `json:"message"`
	Ideal          []float64 `json:"ideal"`
	Nadir          []float64 `json:"nadir"`
	ObjectiveNames []string  `json:"objective_names"`
}

func (*InitialRequest) Kind() RequestKind { return KindInitial }

// IterationRequest shows the current reachable region and distance.
type IterationRequest struct {
	Message        string    `json:"message"`
	Ideal          []float64 `json:"ideal"`
	Nadir          []float64 `json:"nadir"`
	NIterations    int       `json:"n_iterations"`
	LowerBounds    []float64 `json:"lower_bounds"`
	UpperBounds    []float64 `json:"upper_bounds"`
	Distance       float64   `json:"distance"`
	Step           int       `json:"step"`
	IterationsLeft int       `json:"iterations_left"`
	ObjectiveNames []string  `json:"objective_names"`
}

func (*IterationRequest) Kind() RequestKind { return KindIteration }

// StopRequest carries the final solution; it accepts no response.
type StopRequest struct {
	Message         string    `json:"message"`
	Solution        []float64 `json:"solution"`
	ObjectiveVector []float64 `json:"objective_vector"`
}

func (*StopRequest) Kind() RequestKind { return KindStop }

// #endregion payloads
