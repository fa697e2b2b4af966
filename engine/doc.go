/*
Package engine computes the most probable explanation (MPE/MAP) of a
discrete graphical model via AND/OR branch-and-bound or best-first (AO*)
search over a pseudo-tree, guided by an admissible upper-bound heuristic
built by mini-bucket elimination or factor-graph linear programming (FGLP).

Describing a problem

A problem is a Network: a variable count, per-variable domain sizes, and a
set of Factors whose product (in log-space) defines an unnormalized
distribution over full assignments. The common way to build one is to parse
a UAI-style network file:

    net, err := engine.ParseUAI(f)

Evidence and preprocessing

Before search, evidence is applied and the network is reduced to a dense,
connected form:

    evid, err := engine.ParseEvidence(ef, net.Domains)
    net, err = engine.Preprocess(net, engine.PreprocessOptions{
        Collapse: true,
        Evidence: evid,
    })

Ordering, pseudo-tree and heuristic

    order, width, err := engine.EliminationOrder(net.InteractionGraph(), limit, tolerance, nil)
    pt := engine.BuildPseudoTree(net, order, cacheLimit, false)
    h := engine.NewMBEHeuristic(iBound, true)
    err = h.Build(net, pt)

Searching

    s := engine.NewBnBSearch(net, pt, h, engine.BnBOptions{})
    status := s.Run()
    value, dense, ok := s.Incumbent()

The resulting dense-id assignment is re-expanded to original variable ids
via Network.OriginalAssignment before being written with WriteSolution.
*/
package engine
